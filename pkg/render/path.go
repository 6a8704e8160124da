package render

import (
	"cmp"
	"slices"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/geom"
)

// PerimeterPath returns the closed polygon of the global outline: the outer
// box corners with each edge's hinges inserted in walk order (clockwise from
// the top-left corner). It is empty when there are no sections and has
// exactly four points when no hinges are configured.
func PerimeterPath(s animator.State) []geom.Point {
	if s.Outer == nil {
		return nil
	}
	o := *s.Outer
	byX := func(a, b animator.Hinge) int { return cmp.Compare(a.Pos.X, b.Pos.X) }
	byY := func(a, b animator.Hinge) int { return cmp.Compare(a.Pos.Y, b.Pos.Y) }

	top := sortedHinges(s, geom.SideTop, byX, false)
	right := sortedHinges(s, geom.SideRight, byY, false)
	bottom := sortedHinges(s, geom.SideBottom, byX, true)
	left := sortedHinges(s, geom.SideLeft, byY, true)

	path := make([]geom.Point, 0, 4+len(s.Hinges))
	path = append(path, o.TopLeft())
	path = append(path, top...)
	path = append(path, o.TopRight())
	path = append(path, right...)
	path = append(path, o.BottomRight())
	path = append(path, bottom...)
	path = append(path, o.BottomLeft())
	path = append(path, left...)
	return path
}

func sortedHinges(s animator.State, side geom.Side, by func(a, b animator.Hinge) int, reverse bool) []geom.Point {
	hs := s.HingesOn(side)
	slices.SortStableFunc(hs, by)
	if reverse {
		slices.Reverse(hs)
	}
	pts := make([]geom.Point, len(hs))
	for i, h := range hs {
		pts[i] = h.Pos
	}
	return pts
}

// SectionPath returns the closed quadrilateral through a section's corner
// nodes: TL, TR, BR, BL.
func SectionPath(c animator.Corners) []geom.Point {
	return []geom.Point{c.TL, c.TR, c.BR, c.BL}
}

// nodes lists a section's corner nodes in draw order.
func nodes(c animator.Corners) []geom.Point {
	return []geom.Point{c.TL, c.TR, c.BL, c.BR}
}

// trailAlpha is a particle's opacity at frame time: linear fade over its
// lifetime. Frames without a timestamp draw particles fully opaque.
func trailAlpha(p animator.Particle, f animator.Frame) float64 {
	if f.At.IsZero() {
		return 1
	}
	age := f.At.Sub(p.Born)
	if age <= 0 {
		return 1
	}
	return max(0, 1-float64(age)/float64(animator.TrailLifetime))
}
