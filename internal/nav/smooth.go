package nav

import "github.com/bmorris3/linetools/internal/spectrum"

// Smoother tracks the gaussian blur width applied to the displayed
// flux. The zero value means unsmoothed.
type Smoother struct {
	Width float64 // FWHM in pixels
}

// More bumps the smoothing width: the first press turns smoothing on,
// later presses widen the kernel by half a pixel.
func (s Smoother) More() Smoother {
	if s.Width > 0 {
		s.Width += 0.5
	} else {
		s.Width = 1
	}
	return s
}

// Off restores the raw flux.
func (s Smoother) Off() Smoother {
	s.Width = 0
	return s
}

// ApplyKey handles the S/U smoothing keys, returning the new state and
// whether the key was consumed.
func (s Smoother) ApplyKey(key string) (Smoother, bool) {
	switch key {
	case "S":
		return s.More(), true
	case "U":
		return s.Off(), true
	}
	return s, false
}

// Flux returns the displayed flux series for the current width.
func (s Smoother) Flux(spec *spectrum.Spectrum) []float64 {
	return spectrum.Smooth(spec.Flux, s.Width)
}
