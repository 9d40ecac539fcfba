package fit

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/bmorris3/linetools/internal/spectrum"
)

var (
	ErrTooFewKnots   = errors.New("fit: need at least 1 interior spline knot")
	ErrOutsideRegion = errors.New("fit: outside fitting region")
	ErrDuplicateKnot = errors.New("fit: a knot already exists at that wavelength")
	ErrAnchorKnot    = errors.New("fit: edge anchor knots cannot be deleted or moved")
	ErrNotAscending  = errors.New("fit: knot wavelengths must be strictly increasing")
	ErrFinished      = errors.New("fit: session already finished")
	ErrBadRegion     = errors.New("fit: fitting region does not fit inside the spectrum")
)

// MedianHalfWidth is the pixel half-width used when estimating a knot y
// value from the local flux median.
const MedianHalfWidth = 10

// State tracks the fitter lifecycle.
type State int

const (
	StateInitializing State = iota
	StateEditing
	StateFinished
)

// Fitter owns the knot list for one continuum-fitting session and
// recomputes the spline continuum and residuals whenever the knots
// change. Edits are all-or-nothing: a rejected edit leaves every field
// untouched.
type Fitter struct {
	spec  *spectrum.Spectrum
	knots KnotList

	cont  []float64 // full spectrum length, refreshed inside the window
	resid []float64 // one entry per window pixel

	i0, i1             int // half-open pixel window [i0, i1)
	anchorLo, anchorHi Knot

	state State
}

// New builds a fitter from a spectrum, at least two knots, and an
// optional prior continuum. The fitting window is fixed here from the
// knot extremes, clamped so that one extra pixel exists on each side
// for the slope-matching anchors, and an initial fit is performed.
func New(spec *spectrum.Spectrum, knots []Knot, cont []float64) (*Fitter, error) {
	if len(knots) < 2 {
		return nil, ErrTooFewKnots
	}
	kl := NewKnotList(knots)
	npix := spec.Npix()
	if npix < 4 {
		return nil, ErrBadRegion
	}

	lo := spec.SearchSorted(kl.At(0).X)
	hi := spec.SearchSorted(kl.At(kl.Len() - 1).X)
	if lo < 1 {
		lo = 1
	}
	if hi > npix-2 {
		hi = npix - 2
	}
	if hi <= lo {
		return nil, ErrBadRegion
	}

	// Snap the edge knots onto the wavelength grid.
	kl = kl.Replace(0, Knot{X: spec.Wave[lo], Y: kl.At(0).Y})
	kl = kl.Replace(kl.Len()-1, Knot{X: spec.Wave[hi], Y: kl.At(kl.Len() - 1).Y})

	f := &Fitter{
		spec:  spec,
		knots: kl,
		cont:  make([]float64, npix),
		i0:    lo,
		i1:    hi + 1,
		state: StateInitializing,
	}
	if len(cont) == npix {
		copy(f.cont, cont)
		f.anchorLo = Knot{X: spec.Wave[lo-1], Y: cont[lo-1]}
		f.anchorHi = Knot{X: spec.Wave[hi+1], Y: cont[hi+1]}
	} else {
		// No prior continuum: hold the boundary slope flat.
		f.anchorLo = Knot{X: spec.Wave[lo-1], Y: kl.At(0).Y}
		f.anchorHi = Knot{X: spec.Wave[hi+1], Y: kl.At(kl.Len() - 1).Y}
	}

	if err := f.refit(f.knots); err != nil {
		return nil, err
	}
	f.state = StateEditing
	return f, nil
}

// Spectrum returns the read-only input spectrum.
func (f *Fitter) Spectrum() *spectrum.Spectrum { return f.spec }

// Knots returns the current knot list value.
func (f *Fitter) Knots() KnotList { return f.knots }

// Continuum returns the fitted continuum, full spectrum length.
func (f *Fitter) Continuum() []float64 { return f.cont }

// Residuals returns (flux-continuum)/error for each window pixel.
// Pixels without a positive error are NaN.
func (f *Fitter) Residuals() []float64 { return f.resid }

// Window returns the half-open pixel index range being fitted.
func (f *Fitter) Window() (int, int) { return f.i0, f.i1 }

// Wmin returns the first wavelength of the fitting region.
func (f *Fitter) Wmin() float64 { return f.spec.Wave[f.i0] }

// Wmax returns the last wavelength of the fitting region.
func (f *Fitter) Wmax() float64 { return f.spec.Wave[f.i1-1] }

// State returns the lifecycle state.
func (f *Fitter) State() State { return f.state }

// Finished reports whether a quit event ended the session.
func (f *Fitter) Finished() bool { return f.state == StateFinished }

// refit fits an Akima spline through anchor + knots + anchor and, on
// success only, refreshes the continuum and residuals and commits the
// candidate knot list.
func (f *Fitter) refit(candidate KnotList) error {
	pts := make([]Knot, 0, candidate.Len()+2)
	pts = append(pts, f.anchorLo)
	pts = append(pts, candidate.pts...)
	pts = append(pts, f.anchorHi)
	if len(pts) < 3 {
		return ErrTooFewKnots
	}

	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
		if i > 0 && xs[i] <= xs[i-1] {
			return ErrNotAscending
		}
	}

	var sp interp.AkimaSpline
	if err := sp.Fit(xs, ys); err != nil {
		return err
	}

	cont := make([]float64, len(f.cont))
	copy(cont, f.cont)
	resid := make([]float64, f.i1-f.i0)
	for i := f.i0; i < f.i1; i++ {
		cont[i] = sp.Predict(f.spec.Wave[i])
		if f.spec.Err[i] > 0 {
			resid[i-f.i0] = (f.spec.Flux[i] - cont[i]) / f.spec.Err[i]
		} else {
			resid[i-f.i0] = math.NaN()
		}
	}

	f.knots = candidate
	f.cont = cont
	f.resid = resid
	return nil
}

// localMedian adapts the spectrum median lookup to the knot list API.
func (f *Fitter) localMedian(x float64) (float64, bool) {
	return f.spec.LocalMedian(x, MedianHalfWidth)
}

// Apply processes one edit event. proj maps data coordinates to screen
// pixels for the nearest-knot operations. The returned error reports a
// rejected edit; the fitter state is unchanged in that case.
func (f *Fitter) Apply(ev Event, proj Projection) error {
	if f.state == StateFinished {
		return ErrFinished
	}

	switch ev.Op {
	case OpQuit:
		f.state = StateFinished
		return nil

	case OpAdd, OpAddMedian:
		if !spectrum.Between(ev.X, f.Wmin(), f.Wmax()) {
			return ErrOutsideRegion
		}
		y := ev.Y
		if ev.Op == OpAddMedian {
			if m, ok := f.localMedian(ev.X); ok {
				y = m
			}
		}
		nl, err := f.knots.Insert(Knot{X: ev.X, Y: y})
		if err != nil {
			return err
		}
		return f.refit(nl)

	case OpDouble:
		return f.refit(f.knots.Double(f.localMedian))

	case OpHalve:
		return f.refit(f.knots.Halve())

	case OpDelete:
		if f.knots.Len() < 3 {
			return ErrTooFewKnots
		}
		idx := f.knots.Nearest(ev.Px, ev.Py, proj)
		if idx <= 0 || idx >= f.knots.Len()-1 {
			return ErrAnchorKnot
		}
		return f.refit(f.knots.Remove(idx))

	case OpMove, OpMoveMedian:
		if !spectrum.Between(ev.X, f.Wmin(), f.Wmax()) {
			return ErrOutsideRegion
		}
		idx := f.knots.Nearest(ev.Px, ev.Py, proj)
		if idx <= 0 || idx >= f.knots.Len()-1 {
			return ErrAnchorKnot
		}
		y := ev.Y
		if ev.Op == OpMoveMedian {
			if m, ok := f.localMedian(ev.X); ok {
				y = m
			}
		}
		return f.refit(f.knots.Replace(idx, Knot{X: ev.X, Y: y}))
	}
	return nil
}

// histBins spans residuals 0 to 5 in steps of 0.2 for the display
// histogram.
var histBins = func() []float64 {
	var b []float64
	for v := 0.0; v <= 5.0+1e-9; v += 0.2 {
		b = append(b, v)
	}
	return b
}()

// ResidualHistogram bins the residuals of window pixels whose
// wavelength lies inside [w0, w1]. It returns the per-bin counts and
// the bin edges.
func (f *Fitter) ResidualHistogram(w0, w1 float64) (counts, edges []float64) {
	var samples []float64
	for i := f.i0; i < f.i1; i++ {
		r := f.resid[i-f.i0]
		if math.IsNaN(r) || r < histBins[0] || r >= histBins[len(histBins)-1] {
			continue
		}
		if spectrum.Between(f.spec.Wave[i], w0, w1) {
			samples = append(samples, r)
		}
	}
	sort.Float64s(samples)
	counts = make([]float64, len(histBins)-1)
	if len(samples) > 0 {
		stat.Histogram(counts, histBins, samples, nil)
	}
	return counts, histBins
}
