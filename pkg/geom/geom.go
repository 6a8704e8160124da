package geom

import "math"

// Point is a 2D position or vector.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the Euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Lerp moves p a fraction a of the way toward q.
func (p Point) Lerp(q Point, a float64) Point {
	return Point{p.X + (q.X-p.X)*a, p.Y + (q.Y-p.Y)*a}
}

// Rect is a layout rectangle given by its origin and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Box is an axis-aligned rectangle given by its four edges.
type Box struct {
	Left, Top, Right, Bottom float64
}

// Width returns the horizontal span of the box.
func (b Box) Width() float64 { return b.Right - b.Left }

// Height returns the vertical span of the box.
func (b Box) Height() float64 { return b.Bottom - b.Top }

// TopLeft returns the top-left corner.
func (b Box) TopLeft() Point { return Point{b.Left, b.Top} }

// TopRight returns the top-right corner.
func (b Box) TopRight() Point { return Point{b.Right, b.Top} }

// BottomLeft returns the bottom-left corner.
func (b Box) BottomLeft() Point { return Point{b.Left, b.Bottom} }

// BottomRight returns the bottom-right corner.
func (b Box) BottomRight() Point { return Point{b.Right, b.Bottom} }

// Expand grows the box by d on every side.
func (b Box) Expand(d float64) Box {
	return Box{b.Left - d, b.Top - d, b.Right + d, b.Bottom + d}
}

// Union returns the smallest box enclosing b and o.
func (b Box) Union(o Box) Box {
	return Box{
		Left:   min(b.Left, o.Left),
		Top:    min(b.Top, o.Top),
		Right:  max(b.Right, o.Right),
		Bottom: max(b.Bottom, o.Bottom),
	}
}

// UnionAll returns the union of boxes and false if boxes is empty.
func UnionAll(boxes []Box) (Box, bool) {
	if len(boxes) == 0 {
		return Box{}, false
	}
	u := boxes[0]
	for _, b := range boxes[1:] {
		u = u.Union(b)
	}
	return u, true
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
