package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bmorris3/linetools/internal/fit"
	"github.com/bmorris3/linetools/internal/nav"
	"github.com/bmorris3/linetools/internal/session"
)

const (
	defaultWidth  = 100
	defaultHeight = 32

	residRows  = 4
	panelWidth = 34
	headerRows = 1
)

// Model drives one interactive continuum-fitting session. All state
// changes happen synchronously inside Update; bubbletea delivers one
// event at a time.
type Model struct {
	fitter   *fit.Fitter
	store    *session.Store
	vp       nav.Viewport
	smoother nav.Smoother
	flux     []float64
	redshift float64

	cursorCol, cursorRow int // cell position inside the main plot
	width, height        int
	status               string
	statusErr            bool
	showHelp             bool
}

// NewModel builds the editor around an initialized fitter. The initial
// viewport spans the fitting window with percentile y-limits, matching
// the first draw of the original tool.
func NewModel(f *fit.Fitter, store *session.Store, redshift, smoothWidth float64) Model {
	m := Model{
		fitter:   f,
		store:    store,
		redshift: redshift,
		smoother: nav.Smoother{Width: smoothWidth},
		width:    defaultWidth,
		height:   defaultHeight,
		status:   fmt.Sprintf("%d knots loaded", f.Knots().Len()),
	}
	m.flux = m.smoother.Flux(f.Spectrum())

	whole := nav.Whole(f.Spectrum(), m.flux)
	m.vp = whole
	m.vp.X0, m.vp.X1 = f.Wmin(), f.Wmax()
	m.vp = m.vp.Apply(nav.Event{Op: nav.OpAutoY, InAxes: true}, f.Spectrum(), m.flux)

	w, h := m.plotSize()
	m.cursorCol, m.cursorRow = w/2, h/2
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// plotSize returns the main plot area in cells.
func (m Model) plotSize() (w, h int) {
	w = m.width - panelWidth - 1
	if w < 40 {
		w = 40
	}
	h = m.height - residRows - headerRows - 4
	if h < 10 {
		h = 10
	}
	return w, h
}

// cursorData converts the crosshair cell to data coordinates.
func (m Model) cursorData() (x, y float64) {
	w, h := m.plotSize()
	x = m.vp.X0 + (float64(m.cursorCol)+0.5)/float64(w)*(m.vp.X1-m.vp.X0)
	y = m.vp.Y1 - (float64(m.cursorRow)+0.5)/float64(h)*(m.vp.Y1-m.vp.Y0)
	return x, y
}

// proj maps data coordinates onto the main canvas sub-pixel grid.
func (m Model) proj() fit.Projection {
	w, h := m.plotSize()
	vp := m.vp
	dx := vp.X1 - vp.X0
	dy := vp.Y1 - vp.Y0
	return func(x, y float64) (float64, float64) {
		return (x - vp.X0) / dx * float64(w*2), (vp.Y1 - y) / dy * float64(h*4)
	}
}

func (m *Model) clampCursor() {
	w, h := m.plotSize()
	if m.cursorCol >= w {
		m.cursorCol = w - 1
	}
	if m.cursorCol < 0 {
		m.cursorCol = 0
	}
	if m.cursorRow >= h {
		m.cursorRow = h - 1
	}
	if m.cursorRow < 0 {
		m.cursorRow = 0
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.clampCursor()
		return m, nil

	case tea.MouseMsg:
		w, h := m.plotSize()
		col, row := msg.X, msg.Y-headerRows-residRows
		if col >= 0 && col < w && row >= 0 && row < h {
			m.cursorCol, m.cursorRow = col, row
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "up":
		m.cursorRow--
	case "down":
		m.cursorRow++
	case "left":
		m.cursorCol--
	case "right":
		m.cursorCol++
	case "shift+up":
		m.cursorRow -= 5
	case "shift+down":
		m.cursorRow += 5
	case "shift+left":
		m.cursorCol -= 5
	case "shift+right":
		m.cursorCol += 5
	}
	m.clampCursor()

	if s, ok := m.smoother.ApplyKey(key); ok {
		m.smoother = s
		m.flux = s.Flux(m.fitter.Spectrum())
		if s.Width > 0 {
			m.setStatus(fmt.Sprintf("smoothing width %.1f px", s.Width), false)
		} else {
			m.setStatus("smoothing off", false)
		}
		return m, nil
	}

	if op := nav.OpForKey(key); op != nav.OpNone {
		x, y := m.cursorData()
		m.vp = m.vp.Apply(nav.Event{Op: op, X: x, Y: y, InAxes: true}, m.fitter.Spectrum(), m.flux)
		return m, nil
	}

	if op := fit.OpForKey(key); op != fit.OpNone {
		return m.applyEdit(op)
	}
	return m, nil
}

func (m Model) applyEdit(op fit.Op) (tea.Model, tea.Cmd) {
	x, y := m.cursorData()
	ev := fit.Event{
		Op: op,
		X:  x,
		Y:  y,
		Px: float64(m.cursorCol*2 + 1),
		Py: float64(m.cursorRow*4 + 2),
	}
	if err := m.fitter.Apply(ev, m.proj()); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if op == fit.OpQuit {
		return m, tea.Quit
	}

	knots := m.fitter.Knots()
	if err := m.store.Commit(knots); err != nil {
		m.setStatus("save failed: "+err.Error(), true)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("%d knots (edit %d)", knots.Len(), knots.Version()), false)
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// Run starts the interactive session and returns the final knot list
// once the user quits.
func Run(f *fit.Fitter, store *session.Store, redshift, smoothWidth float64) ([]fit.Knot, error) {
	p := tea.NewProgram(
		NewModel(f, store, redshift, smoothWidth),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(Model); ok {
		return fm.fitter.Knots().Points(), nil
	}
	return f.Knots().Points(), nil
}
