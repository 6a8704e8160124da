package animator

import (
	"math"

	"github.com/matzehuels/perimeter/pkg/geom"
	"github.com/matzehuels/perimeter/pkg/layout"
)

// Corners holds the four animated corner nodes of one section outline.
type Corners struct {
	TL, TR, BL, BR geom.Point
}

// cornersAt places all four nodes exactly on the box corners.
func cornersAt(b geom.Box) Corners {
	return Corners{TL: b.TopLeft(), TR: b.TopRight(), BL: b.BottomLeft(), BR: b.BottomRight()}
}

// Hinge is a drifting node on one edge of the global outer box.
type Hinge struct {
	Side    geom.Side
	Rest    geom.Point // seeded projection point on the edge
	Pos     geom.Point
	Vel     geom.Point
	Tangent geom.Point // unit vector along the edge
	Normal  geom.Point // outward unit normal
}

// State is the complete animation state for one layout generation.
// Boxes and Corners are parallel slices in section order.
type State struct {
	Boxes   []geom.Box
	Corners []Corners
	Outer   *geom.Box // nil when there are no sections
	Hinges  []Hinge
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := State{
		Boxes:   append([]geom.Box(nil), s.Boxes...),
		Corners: append([]Corners(nil), s.Corners...),
		Hinges:  append([]Hinge(nil), s.Hinges...),
	}
	if s.Outer != nil {
		o := *s.Outer
		c.Outer = &o
	}
	return c
}

// HingesOn returns the hinges seeded on one edge, in seeding order.
func (s State) HingesOn(side geom.Side) []Hinge {
	var out []Hinge
	for _, h := range s.Hinges {
		if h.Side == side {
			out = append(out, h)
		}
	}
	return out
}

// Measure builds a fresh State from section rectangles.
//
// Each rectangle is snapped to whole pixels the way a browser layout
// measurement is, expanded by cfg.OutlineOffset, and gets corner nodes at
// rest on its corners. The outer box is the union of all boxes; hinges are
// spaced at i/(n+1) along each of its edges with zero velocity. Calling
// Measure again with the same input yields an identical State.
func Measure(rects []geom.Rect, cfg Config) State {
	s := State{
		Boxes:   make([]geom.Box, len(rects)),
		Corners: make([]Corners, len(rects)),
	}
	for i, r := range rects {
		left := math.Round(r.X)
		top := math.Round(r.Y)
		raw := geom.Box{
			Left:   left,
			Top:    top,
			Right:  math.Round(left + r.Width),
			Bottom: math.Round(top + r.Height),
		}
		s.Boxes[i] = raw.Expand(cfg.OutlineOffset)
		s.Corners[i] = cornersAt(s.Boxes[i])
	}

	outer, ok := geom.UnionAll(s.Boxes)
	if !ok {
		return s
	}
	s.Outer = &outer
	s.Hinges = seedHinges(outer, cfg.PerimeterExtrasPerSide)
	return s
}

// MeasureSource measures the sections a layout source currently reports.
func MeasureSource(src layout.Source, cfg Config) State {
	if src == nil {
		return State{}
	}
	return Measure(src.Sections(), cfg)
}

func seedHinges(outer geom.Box, perSide int) []Hinge {
	if perSide <= 0 {
		return nil
	}
	hinges := make([]Hinge, 0, 4*perSide)
	for _, side := range geom.Sides {
		a, b := side.Endpoints(outer)
		for i := 1; i <= perSide; i++ {
			t := float64(i) / float64(perSide+1)
			p := a.Lerp(b, t)
			hinges = append(hinges, Hinge{
				Side:    side,
				Rest:    p,
				Pos:     p,
				Tangent: side.Tangent(),
				Normal:  side.Normal(),
			})
		}
	}
	return hinges
}
