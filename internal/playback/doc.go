// Package playback implements the state machine that replays a traversal's
// visitation order onto a render sink.
//
// A [Controller] owns a cursor into the trace published by its current
// [trace.Worker], the playback [State], and the worker's lifecycle. Callers
// [Controller.Submit] commands; each [Controller.Tick] acts on the single
// highest-precedence pending condition:
//
//	ApplyOptions > Reset > Restart > GoBack > GoNext > Paused
//	  > terminal hold > PlayingForward > PlayingBackward
//
// # Colouring
//
// For cursor c > 0, trace[c-1] is Frontier, trace[:c-1] is Explored and every
// other cell is Unvisited. Cursor 0 means nothing is shown.
//
// # Thread Safety
//
// A Controller is NOT thread-safe. Submit, Tick and Close must all be called
// from the one goroutine that also owns the render sink. The worker goroutine
// only ever touches its own trace.
package playback
