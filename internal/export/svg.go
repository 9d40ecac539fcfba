// Package export renders a fitted spectrum to standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/bmorris3/linetools/internal/fit"
	"github.com/bmorris3/linetools/internal/spectrum"
)

const (
	fluxColor = "#9ad1ff"
	contColor = "#ff6b6b"
	knotColor = "#ffd166"
	bgColor   = "#0a0a0a"
)

// SpectrumSVG draws the flux as a polyline, the fitted continuum over
// its window and the knots as filled circles. Pixel y-limits come from
// the same percentile rule the interactive plot uses.
func SpectrumSVG(f *fit.Fitter, width, height int) string {
	spec := f.Spectrum()
	x0 := spec.Wave[0]
	x1 := spec.Wave[spec.Npix()-1]
	y0, y1 := spectrum.PlotRange(spec.Flux, spec.Err)

	toX := func(w float64) float64 {
		return (w - x0) / (x1 - x0) * float64(width)
	}
	toY := func(v float64) float64 {
		return float64(height) - (v-y0)/(y1-y0)*float64(height)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, bgColor))

	writePath(&sb, spec.Wave, spec.Flux, 0, spec.Npix(), toX, toY, fluxColor, 1.0)
	i0, i1 := f.Window()
	writePath(&sb, spec.Wave, f.Continuum(), i0, i1, toX, toY, contColor, 1.5)

	kl := f.Knots()
	sb.WriteString(fmt.Sprintf(`<g fill="%s">`+"\n", knotColor))
	for i := 0; i < kl.Len(); i++ {
		k := kl.At(i)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3"/>`+"\n", toX(k.X), toY(k.Y)))
	}
	sb.WriteString("</g>\n")

	sb.WriteString(fmt.Sprintf(`<text x="4" y="%d" fill="#888" font-size="10">%.1f</text>`+"\n", height-4, x0))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="#888" font-size="10" text-anchor="end">%.1f</text>`+"\n", width-4, height-4, x1))
	sb.WriteString("</svg>")
	return sb.String()
}

// writePath emits one polyline path for ys[lo:hi], breaking the stroke
// at non-finite values.
func writePath(sb *strings.Builder, xs, ys []float64, lo, hi int, toX, toY func(float64) float64, color string, strokeWidth float64) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%.1f" d="`, color, strokeWidth))
	pen := false
	for i := lo; i < hi; i++ {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
			pen = true
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", cmd, toX(xs[i]), toY(ys[i])))
	}
	sb.WriteString("\"/>\n")
}
