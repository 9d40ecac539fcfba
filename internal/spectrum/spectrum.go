package spectrum

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmpty          = errors.New("spectrum: no pixels")
	ErrLengthMismatch = errors.New("spectrum: wavelength, flux and error arrays differ in length")
	ErrNotAscending   = errors.New("spectrum: wavelengths must be strictly increasing")
)

// Spectrum holds a 1D spectrum: wavelength, flux and one-sigma error
// arrays aligned by pixel index. The arrays are treated as read-only
// once the spectrum is constructed.
type Spectrum struct {
	Wave []float64
	Flux []float64
	Err  []float64
}

// New validates the input arrays and returns a spectrum.
func New(wave, flux, err []float64) (*Spectrum, error) {
	if len(wave) == 0 {
		return nil, ErrEmpty
	}
	if len(flux) != len(wave) || len(err) != len(wave) {
		return nil, ErrLengthMismatch
	}
	for i := 1; i < len(wave); i++ {
		if wave[i] <= wave[i-1] {
			return nil, ErrNotAscending
		}
	}
	return &Spectrum{Wave: wave, Flux: flux, Err: err}, nil
}

// Npix returns the number of pixels.
func (s *Spectrum) Npix() int { return len(s.Wave) }

// SearchSorted returns the insertion index of x in the wavelength grid.
func (s *Spectrum) SearchSorted(x float64) int {
	return sort.SearchFloat64s(s.Wave, x)
}

// goodPixel reports whether pixel i has a positive error and finite flux.
func (s *Spectrum) goodPixel(i int) bool {
	return s.Err[i] > 0 && !math.IsNaN(s.Flux[i]) && !math.IsInf(s.Flux[i], 0)
}

// LocalMedian returns the median flux within +/- npix pixels of
// wavelength x, using only pixels with a positive error and finite
// flux. ok is false when no such pixel exists in the range.
func (s *Spectrum) LocalMedian(x float64, npix int) (med float64, ok bool) {
	i := s.SearchSorted(x)
	i0, i1 := i-npix, i+npix
	if i0 < 0 {
		i0 = 0
	}
	if i1 > s.Npix() {
		i1 = s.Npix()
	}
	var good []float64
	for j := i0; j < i1; j++ {
		if s.goodPixel(j) {
			good = append(good, s.Flux[j])
		}
	}
	if len(good) == 0 {
		return 0, false
	}
	return median(good), true
}

// PlotRange returns display y-limits for a flux slice: the upper limit
// is twice the magnitude of the 95th percentile of the good pixels, the
// lower limit leaves a 10% margin below zero.
func PlotRange(flux, err []float64) (y0, y1 float64) {
	var good []float64
	for i, f := range flux {
		if i < len(err) && err[i] <= 0 {
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		good = append(good, f)
	}
	if len(good) == 0 {
		return 0, 1
	}
	sort.Float64s(good)
	ymax := 2 * math.Abs(stat.Quantile(0.95, stat.Empirical, good, nil))
	if ymax == 0 {
		ymax = 1
	}
	return -0.1 * ymax, ymax
}

// Between reports whether x lies in the closed interval [lo, hi].
func Between(x, lo, hi float64) bool {
	return lo <= x && x <= hi
}

// median sorts its argument in place.
func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return 0.5 * (v[n/2-1] + v[n/2])
}
