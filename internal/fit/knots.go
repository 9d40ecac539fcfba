package fit

import (
	"math"
	"sort"
)

// Knot is a user-placed continuum control point.
type Knot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projection maps data coordinates to screen pixels for hit testing.
// A nil projection means data coordinates are already pixels.
type Projection func(x, y float64) (px, py float64)

// KnotList is a sorted list of continuum knots, treated as an immutable
// value: every mutation returns a new list with the version bumped. The
// first and last entries bound the fitting region.
type KnotList struct {
	version int
	pts     []Knot
}

// NewKnotList copies and sorts the given knots into a list.
func NewKnotList(pts []Knot) KnotList {
	cp := make([]Knot, len(pts))
	copy(cp, pts)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].X < cp[j].X })
	return KnotList{pts: cp}
}

// Version identifies the mutation generation of the list.
func (l KnotList) Version() int { return l.version }

// Len returns the number of knots.
func (l KnotList) Len() int { return len(l.pts) }

// At returns the i-th knot in wavelength order.
func (l KnotList) At(i int) Knot { return l.pts[i] }

// Points returns a copy of the knots in wavelength order.
func (l KnotList) Points() []Knot {
	cp := make([]Knot, len(l.pts))
	copy(cp, l.pts)
	return cp
}

// Interior returns a copy of the knots excluding the two edge anchors.
func (l KnotList) Interior() []Knot {
	if len(l.pts) <= 2 {
		return nil
	}
	cp := make([]Knot, len(l.pts)-2)
	copy(cp, l.pts[1:len(l.pts)-1])
	return cp
}

func (l KnotList) with(pts []Knot) KnotList {
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return KnotList{version: l.version + 1, pts: pts}
}

// Insert adds a knot, rejecting duplicates in x.
func (l KnotList) Insert(k Knot) (KnotList, error) {
	for _, p := range l.pts {
		if p.X == k.X {
			return l, ErrDuplicateKnot
		}
	}
	pts := make([]Knot, 0, len(l.pts)+1)
	pts = append(pts, l.pts...)
	pts = append(pts, k)
	return l.with(pts), nil
}

// Remove drops the i-th knot.
func (l KnotList) Remove(i int) KnotList {
	pts := make([]Knot, 0, len(l.pts)-1)
	pts = append(pts, l.pts[:i]...)
	pts = append(pts, l.pts[i+1:]...)
	return l.with(pts)
}

// Replace overwrites the i-th knot and re-sorts.
func (l KnotList) Replace(i int, k Knot) KnotList {
	pts := make([]Knot, len(l.pts))
	copy(pts, l.pts)
	pts[i] = k
	return l.with(pts)
}

// Double inserts a knot at the midpoint of every adjacent pair. The new
// y value is linearly interpolated from the neighbors unless med
// reports a local flux median at the midpoint wavelength.
func (l KnotList) Double(med func(x float64) (float64, bool)) KnotList {
	if len(l.pts) < 2 {
		return l.with(l.Points())
	}
	pts := l.Points()
	for i := 0; i < len(l.pts)-1; i++ {
		a, b := l.pts[i], l.pts[i+1]
		x := a.X + 0.5*(b.X-a.X)
		y := a.Y + 0.5*(b.Y-a.Y)
		if med != nil {
			if m, ok := med(x); ok {
				y = m
			}
		}
		pts = append(pts, Knot{X: x, Y: y})
	}
	return l.with(pts)
}

// Halve keeps the two edge anchors plus every second interior knot.
func (l KnotList) Halve() KnotList {
	if len(l.pts) <= 2 {
		return l.with(l.Points())
	}
	interior := l.pts[1 : len(l.pts)-1]
	pts := []Knot{l.pts[0]}
	for i := 1; i < len(interior); i += 2 {
		pts = append(pts, interior[i])
	}
	pts = append(pts, l.pts[len(l.pts)-1])
	return l.with(pts)
}

// Nearest returns the index of the knot closest to the given screen
// pixel, projecting each knot through proj. Ties resolve to the lowest
// index. Returns -1 for an empty list.
func (l KnotList) Nearest(px, py float64, proj Projection) int {
	if proj == nil {
		proj = func(x, y float64) (float64, float64) { return x, y }
	}
	best, bestDist := -1, math.Inf(1)
	for i, p := range l.pts {
		kx, ky := proj(p.X, p.Y)
		d := math.Hypot(px-kx, py-ky)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
