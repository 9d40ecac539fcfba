package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bmorris3/linetools/internal/spectrum"
)

const helpText = `
i,o     zoom in/out x limits about the cursor
y       autorange y limits from the visible flux
Y       grow y limits with extra headroom
t,b     set y top/bottom limit to the cursor
l,r     set x left/right limit to the cursor
[,]     pan left/right
w       plot the whole spectrum
S,U     smooth/unsmooth the flux

a (3)   add a spline knot at the cursor
A       add a knot, y from the local flux median
+       double the number of knots
_       halve the number of knots
d (4)   delete the knot nearest the cursor
m       move the nearest knot to the cursor
M       move the nearest knot, y from the local median

arrows  move the cursor (shift for coarse steps)
q       quit`

const hintLine = "a add  d delete  m move  +/_ double/halve  i/o zoom  [/] pan  S/U smooth  ? help  q quit"

func (m Model) View() string {
	w, h := m.plotSize()

	header := headerStyle.Render("continuum fit") +
		helpStyle.Render(fmt.Sprintf("  %d pixels  window %.1f-%.1f", m.fitter.Spectrum().Npix(), m.fitter.Wmin(), m.fitter.Wmax()))

	status := m.status
	if m.statusErr {
		status = rejectStyle.Render(status)
	} else {
		status = okStyle.Render(status)
	}

	plotBlock := residStyle.Render(m.drawResid(w).String()) + "\n" +
		plotStyle.Render(m.drawMain(w, h).String()) + "\n" +
		m.axisLine(w) + "\n" +
		status + "\n" +
		helpStyle.Render(hintLine)

	body := lipgloss.JoinHorizontal(lipgloss.Top, plotBlock, m.drawPanel())
	out := header + "\n" + body

	if m.showHelp {
		return helpStyle.Render(helpText) + "\n\n" + out
	}
	return out
}

func (m Model) drawMain(w, h int) *Canvas {
	c := NewCanvas(w, h)
	spec := m.fitter.Spectrum()
	proj := m.proj()
	toPix := func(x, y float64) (int, int) {
		px, py := proj(x, y)
		return int(math.Round(px)), int(math.Round(py))
	}

	if m.vp.Y0 < 0 && m.vp.Y1 > 0 {
		_, py := toPix(m.vp.X0, 0)
		c.DrawHLine(py, 4)
	}
	for _, wx := range []float64{m.fitter.Wmin(), m.fitter.Wmax()} {
		if spectrum.Between(wx, m.vp.X0, m.vp.X1) {
			px, _ := toPix(wx, 0)
			c.DrawVLine(px, 3)
		}
	}

	// One-sigma error level, drawn as sparse dots.
	for i := 0; i < spec.Npix(); i += 2 {
		if !spectrum.Between(spec.Wave[i], m.vp.X0, m.vp.X1) {
			continue
		}
		px, py := toPix(spec.Wave[i], spec.Err[i])
		c.Set(px, py)
	}

	drawSeries := func(xs, ys []float64, lo, hi int) {
		prev := false
		var px0, py0 int
		for i := lo; i < hi; i++ {
			if !spectrum.Between(xs[i], m.vp.X0, m.vp.X1) ||
				math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
				prev = false
				continue
			}
			px, py := toPix(xs[i], ys[i])
			if prev {
				c.DrawLine(px0, py0, px, py)
			} else {
				c.Set(px, py)
			}
			px0, py0, prev = px, py, true
		}
	}

	drawSeries(spec.Wave, m.flux, 0, spec.Npix())
	i0, i1 := m.fitter.Window()
	drawSeries(spec.Wave, m.fitter.Continuum(), i0, i1)

	kl := m.fitter.Knots()
	for i := 0; i < kl.Len(); i++ {
		k := kl.At(i)
		if !spectrum.Between(k.X, m.vp.X0, m.vp.X1) {
			continue
		}
		px, py := toPix(k.X, k.Y)
		c.DrawMarker(px, py)
	}

	c.SetCell(m.cursorCol, m.cursorRow, '┼')
	return c
}

// drawResid renders the residual strip with guides at 0 and +/-1 sigma
// and dashed guides at +/-2 sigma, y fixed to [-4, 4].
func (m Model) drawResid(w int) *Canvas {
	c := NewCanvas(w, residRows)
	sub := float64(c.SubHeight())
	toPy := func(r float64) int { return int((4 - r) / 8 * sub) }

	for _, g := range []float64{-1, 0, 1} {
		c.DrawHLine(toPy(g), 2)
	}
	for _, g := range []float64{-2, 2} {
		c.DrawHLine(toPy(g), 6)
	}

	spec := m.fitter.Spectrum()
	i0, i1 := m.fitter.Window()
	resid := m.fitter.Residuals()
	dx := m.vp.X1 - m.vp.X0
	for i := i0; i < i1; i++ {
		r := resid[i-i0]
		if math.IsNaN(r) || r < -4 || r > 4 {
			continue
		}
		if !spectrum.Between(spec.Wave[i], m.vp.X0, m.vp.X1) {
			continue
		}
		px := int((spec.Wave[i] - m.vp.X0) / dx * float64(c.SubWidth()))
		c.Set(px, toPy(r))
	}
	return c
}

func (m Model) axisLine(w int) string {
	left := fmt.Sprintf("%.1f", m.vp.X0)
	right := fmt.Sprintf("%.1f", m.vp.X1)
	pad := w - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return helpStyle.Render(left + strings.Repeat(" ", pad) + right)
}

func (m Model) drawPanel() string {
	var b strings.Builder
	kl := m.fitter.Knots()
	cx, cy := m.cursorData()

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("knots", fmt.Sprintf("%d (edit %d)", kl.Len(), kl.Version()))
	row("cursor", fmt.Sprintf("%.2f  %.3f", cx, cy))
	row("y range", fmt.Sprintf("%.3f to %.3f", m.vp.Y0, m.vp.Y1))
	if m.smoother.Width > 0 {
		row("smooth", fmt.Sprintf("%.1f px", m.smoother.Width))
	} else {
		row("smooth", "off")
	}
	if m.redshift != 0 {
		row("redshift", fmt.Sprintf("%.4f", m.redshift))
		row("rest", fmt.Sprintf("%.2f", cx/(1+m.redshift)))
	}
	if m.store.Autosave {
		row("autosave", m.store.Path)
	} else {
		row("autosave", "off")
	}

	counts, _ := m.fitter.ResidualHistogram(m.vp.X0, m.vp.X1)
	b.WriteString("\n" + labelStyle.Render("residuals") + "\n")
	b.WriteString(graphStyle.Render(sparkline(counts)) + "\n")
	b.WriteString(helpStyle.Render("0        sigma         5"))

	return panelStyle.Render(b.String())
}

// sparkline renders one block character per histogram bin, scaled to
// the fullest bin.
func sparkline(data []float64) string {
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	maxVal := 0.0
	for _, v := range data {
		if v > maxVal {
			maxVal = v
		}
	}
	var sb strings.Builder
	for _, v := range data {
		idx := 0
		if maxVal > 0 {
			idx = int(v / maxVal * 7)
		}
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}
