// Package viz renders a playback session in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: the playback screen, driven by a tea.Tick whose interval follows
//     the session rate
//   - [Canvas]: the RenderSink, two grid rows per terminal line using half blocks
//   - [Recorder]: GIF capture at tile resolution
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Play forward / pause
//	F / B - Play forward / backward
//	[ ]   - Step back / forward
//	r     - Restart the same trace
//	R     - Reset with a new start cell
//	+ -   - Change rate
//	O     - Options editor
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
