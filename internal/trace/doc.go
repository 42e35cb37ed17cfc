// Package trace runs a traversal in the background and publishes its growing
// visitation order.
//
// A [Worker] owns exactly one goroutine that appends to its [Trace]. Any number
// of goroutines may call [Trace.Snapshot] or [Worker.Snapshot] concurrently; a
// snapshot is always a consistent prefix of the append history.
//
// # Lifecycle
//
// [Start] spawns the walk. [Worker.CancelAndJoin] cancels it and waits, bounded
// by a timeout, for the goroutine to exit. It is idempotent and safe to call
// after the walk has finished on its own. A join that times out returns
// [ErrWorkerHang]; the caller is expected to abandon the worker and its trace.
package trace
