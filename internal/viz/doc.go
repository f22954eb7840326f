// Package viz provides the interactive terminal view of a running machine.
//
// The package implements a TUI using the Bubble Tea framework:
//
//   - [Model]: steps a machine on a timer and draws every tape window
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	R     - Reset and reload the input
//	+/-   - Faster/slower
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
//
// A step error stops the machine and is shown in the status line; the
// configuration stays as it was before the failed step.
package viz
