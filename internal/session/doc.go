// Package session owns one playback controller and the loop that drives it.
//
// Commands may be sent from any goroutine. They are validated on Send and then
// queued; the loop drains the queue into the controller before every tick, so
// the controller and the RenderSink are only ever touched from the loop.
package session
