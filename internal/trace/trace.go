package trace

import (
	"sync"

	"github.com/san-kum/gridsearch/internal/grid"
)

// Trace is an append-only visitation sequence with a single writer.
type Trace struct {
	mu       sync.RWMutex
	cells    []grid.Coordinate
	complete bool
	err      error
}

func newTrace(capacity int) *Trace {
	return &Trace{cells: make([]grid.Coordinate, 0, capacity)}
}

func (t *Trace) append(c grid.Coordinate) {
	t.mu.Lock()
	t.cells = append(t.cells, c)
	t.mu.Unlock()
}

func (t *Trace) finish(err error) {
	t.mu.Lock()
	t.complete = true
	t.err = err
	t.mu.Unlock()
}

// Snapshot returns the cells appended so far and whether the writer has stopped.
// The returned slice is capped at its length, so later appends are never visible
// through it and the caller must not modify it.
func (t *Trace) Snapshot() ([]grid.Coordinate, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := len(t.cells)
	return t.cells[:n:n], t.complete
}

func (t *Trace) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.cells)
}

// Err returns the walk error once the trace is complete. Cancellation is not an error.
func (t *Trace) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}
