// Package viz is a terminal view of a running minimization built on Bubble
// Tea.
//
// [Model] steps a FIRE minimizer on every frame and draws the particles on a
// braille [Canvas], projected onto their first two coordinates, next to
// energy and gradient-norm charts.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial configuration
//	+/-   - Iterations per frame
//	?     - Show help overlay
//	Q     - Quit
package viz
