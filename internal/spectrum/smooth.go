package spectrum

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/conv"
	"github.com/cwbudde/algo-dsp/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// fwhmToSigma converts a gaussian FWHM to its standard deviation.
const fwhmToSigma = 1 / 2.3548200450309493

// Smooth convolves flux with a unit-area gaussian kernel of the given
// FWHM in pixels and returns a slice of the same length. A width of
// zero or less returns a copy of the input unchanged.
func Smooth(flux []float64, fwhm float64) []float64 {
	out := make([]float64, len(flux))
	copy(out, flux)
	if fwhm <= 0 || len(flux) < 2 {
		return out
	}

	// Truncate the kernel at four standard deviations on each side.
	sigma := fwhm * fwhmToSigma
	half := int(math.Ceil(4 * sigma))
	if half < 1 {
		half = 1
	}
	size := 2*half + 1

	// The window package parametrizes its gaussian so that the
	// half-power points sit (N-1)/(2*alpha) samples from the center;
	// alpha = (N-1)/fwhm therefore gives the requested FWHM.
	kern, err := window.Gaussian(size, float64(size-1)/fwhm)
	if err != nil {
		return out
	}
	sum := floats.Sum(kern)
	if sum == 0 {
		return out
	}
	floats.Scale(1/sum, kern)

	smoothed, err := conv.ConvolveMode(flux, kern, conv.ModeSame)
	if err != nil || len(smoothed) != len(flux) {
		return out
	}
	return smoothed
}
