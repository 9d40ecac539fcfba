// Package tui implements the interactive continuum-fitting editor on
// top of the Bubble Tea framework.
//
// The editor overlays a spline continuum on a braille-rendered
// flux/wavelength plot, with a residual strip above it and a side panel
// showing a residual histogram. A crosshair cursor, moved with the
// arrow keys or the mouse, anchors every knot edit and every zoom.
//
// # Key Bindings
//
//	i/o   - Zoom in/out about the cursor
//	[ ]   - Pan left/right
//	y Y   - Autorange y / grow y with headroom
//	w     - Show the whole spectrum
//	S/U   - Smooth/unsmooth the flux
//	a d m - Add/delete/move knots (A, M use the local flux median)
//	+ _   - Double/halve the knots
//	?     - Toggle the help overlay
//	q     - Quit
//
// Events run to completion one at a time; the knot list is saved after
// every applied edit unless autosave is disabled.
package tui
