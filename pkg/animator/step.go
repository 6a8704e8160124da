package animator

import (
	"math"

	"github.com/matzehuels/perimeter/pkg/geom"
)

// Repel pushes p away from the cursor when the cursor is inside radius.
// The displacement is intensity*(1-d/radius)^1.25 along the direction from
// the cursor to p. A cursor exactly on p (d == 0) or at or beyond radius
// leaves p unchanged.
func Repel(p geom.Point, cur Cursor, intensity, radius float64) geom.Point {
	d := p.Sub(cur)
	dist := d.Len()
	if dist >= radius || dist == 0 {
		return p
	}
	mag := intensity * math.Pow(1-dist/radius, 1.25)
	return p.Add(d.Scale(mag / dist))
}

// ClampCorner keeps a corner node outside its box: free to move outward up
// to limit, pinned at the box corner inward. left/top select which corner
// of b the node belongs to.
func ClampCorner(p geom.Point, b geom.Box, left, top bool, limit float64) geom.Point {
	if left {
		p.X = geom.Clamp(p.X, b.Left-limit, b.Left)
	} else {
		p.X = geom.Clamp(p.X, b.Right, b.Right+limit)
	}
	if top {
		p.Y = geom.Clamp(p.Y, b.Top-limit, b.Top)
	} else {
		p.Y = geom.Clamp(p.Y, b.Bottom, b.Bottom+limit)
	}
	return p
}

// ClampHinge keeps a hinge inside its edge span and between the edge and
// the outward cap. Only the position is clamped; velocity is left as is, so
// a hinge can rest against a bound until drift turns it around.
func ClampHinge(h Hinge, outer geom.Box, limit float64) geom.Point {
	p := h.Pos
	switch h.Side {
	case geom.SideTop:
		p.X = geom.Clamp(p.X, outer.Left, outer.Right)
		p.Y = geom.Clamp(p.Y, outer.Top-limit, outer.Top)
	case geom.SideBottom:
		p.X = geom.Clamp(p.X, outer.Left, outer.Right)
		p.Y = geom.Clamp(p.Y, outer.Bottom, outer.Bottom+limit)
	case geom.SideLeft:
		p.Y = geom.Clamp(p.Y, outer.Top, outer.Bottom)
		p.X = geom.Clamp(p.X, outer.Left-limit, outer.Left)
	case geom.SideRight:
		p.Y = geom.Clamp(p.Y, outer.Top, outer.Bottom)
		p.X = geom.Clamp(p.X, outer.Right, outer.Right+limit)
	}
	return p
}

// Step advances every node by one frame and returns the new state; s is not
// modified. A nil jitter behaves like NoJitter.
func Step(s State, cur Cursor, cfg Config, j Jitter) State {
	if j == nil {
		j = NoJitter
	}
	next := s.Clone()
	for i, b := range next.Boxes {
		next.Corners[i] = stepCorners(next.Corners[i], b, cur, cfg)
	}
	if next.Outer != nil {
		for i := range next.Hinges {
			next.Hinges[i] = stepHinge(next.Hinges[i], *next.Outer, cur, cfg, j)
		}
	}
	return next
}

func stepCorners(c Corners, b geom.Box, cur Cursor, cfg Config) Corners {
	move := func(node, base geom.Point, left, top bool) geom.Point {
		target := base
		if !cfg.ReducedMotion {
			target = Repel(base, cur, cfg.HoverMaxOffset, cfg.HoverRadius)
		}
		target = ClampCorner(target, b, left, top, cfg.MaxOutward)
		return ClampCorner(node.Lerp(target, cfg.Ease), b, left, top, cfg.MaxOutward)
	}
	return Corners{
		TL: move(c.TL, b.TopLeft(), true, true),
		TR: move(c.TR, b.TopRight(), false, true),
		BL: move(c.BL, b.BottomLeft(), true, false),
		BR: move(c.BR, b.BottomRight(), false, false),
	}
}

func stepHinge(h Hinge, outer geom.Box, cur Cursor, cfg Config, j Jitter) Hinge {
	if !cfg.ReducedMotion {
		jt := (j.Float64() - 0.5) * cfg.PerimeterDriftTangential
		jn := (j.Float64() - 0.5) * cfg.PerimeterDriftNormal
		h.Vel = h.Vel.Add(h.Tangent.Scale(jt)).Add(h.Normal.Scale(jn))

		d := h.Pos.Sub(cur)
		dist := d.Len()
		reach := cfg.HoverRadius * HingeRadiusScale
		if dist > 0 && dist < reach {
			t := 1 - dist/reach
			h.Vel = h.Vel.Add(d.Scale(cfg.PerimeterMouseFactor * t * t / dist))
		}
	}

	h.Vel = h.Vel.Scale(Damping)
	h.Pos = h.Pos.Add(h.Vel)
	h.Pos = ClampHinge(h, outer, cfg.PerimeterOutwardCap)
	return h
}
