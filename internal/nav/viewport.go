// Package nav implements the generic pan/zoom/smoothing keyboard
// surface shared by the plotting tools. Handlers are pure functions of
// (state, event) so they stay independent of any particular toolkit.
package nav

import (
	"math"

	"github.com/bmorris3/linetools/internal/spectrum"
)

// Op enumerates the navigation operations.
type Op int

const (
	OpNone Op = iota
	OpZoomIn
	OpZoomOut
	OpAutoY
	OpHeadroomY
	OpPanLeft
	OpPanRight
	OpWhole
	OpSetBottom
	OpSetTop
	OpSetLeft
	OpSetRight
)

// Event is one navigation request with the cursor position in data
// coordinates. InAxes is false when the cursor sits outside the plot
// area; most operations are no-ops in that case.
type Event struct {
	Op     Op
	X, Y   float64
	InAxes bool
}

// OpForKey maps the navigation key bindings to operations.
// Unrecognized keys map to OpNone.
func OpForKey(key string) Op {
	switch key {
	case "i":
		return OpZoomIn
	case "o":
		return OpZoomOut
	case "y":
		return OpAutoY
	case "Y":
		return OpHeadroomY
	case "[":
		return OpPanLeft
	case "]":
		return OpPanRight
	case "w":
		return OpWhole
	case "b":
		return OpSetBottom
	case "t":
		return OpSetTop
	case "l":
		return OpSetLeft
	case "r":
		return OpSetRight
	}
	return OpNone
}

// Viewport holds the visible x/y data range of a plot.
type Viewport struct {
	X0, X1 float64
	Y0, Y1 float64
}

// Whole returns a viewport spanning the full spectrum with
// percentile-based y limits on the displayed flux.
func Whole(spec *spectrum.Spectrum, flux []float64) Viewport {
	y0, y1 := spectrum.PlotRange(flux, spec.Err)
	return Viewport{
		X0: spec.Wave[0],
		X1: spec.Wave[spec.Npix()-1],
		Y0: y0,
		Y1: y1,
	}
}

// Apply returns the viewport after one navigation event. flux is the
// series currently displayed (possibly smoothed), used for the
// y-autorange operations. Unmatched or out-of-axes events return the
// viewport unchanged.
func (v Viewport) Apply(ev Event, spec *spectrum.Spectrum, flux []float64) Viewport {
	dx := math.Abs(v.X1 - v.X0)
	dy := math.Abs(v.Y1 - v.Y0)

	switch ev.Op {
	case OpZoomIn:
		if !ev.InAxes {
			return v
		}
		// Shrink the window to 45% of its width about the cursor.
		v.X0, v.X1 = ev.X-0.225*dx, ev.X+0.225*dx
	case OpZoomOut:
		if !ev.InAxes {
			return v
		}
		v.X0, v.X1 = ev.X-0.95*dx, ev.X+0.95*dx
	case OpAutoY:
		if !ev.InAxes {
			return v
		}
		v.Y0, v.Y1 = spectrum.PlotRange(visibleFlux(spec, flux, v.X0, v.X1))
	case OpHeadroomY:
		if !ev.InAxes {
			return v
		}
		v.Y0, v.Y1 = v.Y0-0.05*dy, v.Y1+0.4*dy
	case OpPanLeft:
		v.X0, v.X1 = v.X0-0.9*dx, v.X0+0.1*dx
	case OpPanRight:
		v.X0, v.X1 = v.X1-0.1*dx, v.X1+0.9*dx
	case OpWhole:
		return Whole(spec, flux)
	case OpSetBottom:
		if !ev.InAxes {
			return v
		}
		v.Y0 = ev.Y
	case OpSetTop:
		if !ev.InAxes {
			return v
		}
		v.Y1 = ev.Y
	case OpSetLeft:
		if !ev.InAxes {
			return v
		}
		v.X0 = ev.X
	case OpSetRight:
		if !ev.InAxes {
			return v
		}
		v.X1 = ev.X
	}
	return v
}

// visibleFlux selects the displayed flux and matching errors for pixels
// whose wavelength lies inside [x0, x1].
func visibleFlux(spec *spectrum.Spectrum, flux []float64, x0, x1 float64) ([]float64, []float64) {
	var fl, er []float64
	for i := 0; i < spec.Npix() && i < len(flux); i++ {
		if spectrum.Between(spec.Wave[i], x0, x1) {
			fl = append(fl, flux[i])
			er = append(er, spec.Err[i])
		}
	}
	return fl, er
}
