package geom

// Side names an edge of a Box.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

// Sides lists the edges in perimeter walk order.
var Sides = [4]Side{SideTop, SideRight, SideBottom, SideLeft}

var sideNames = [...]string{"top", "right", "bottom", "left"}

func (s Side) String() string {
	if s < 0 || int(s) >= len(sideNames) {
		return "unknown"
	}
	return sideNames[s]
}

// Horizontal reports whether the edge runs along the x axis.
func (s Side) Horizontal() bool { return s == SideTop || s == SideBottom }

// Tangent returns the unit vector along the edge.
// Horizontal edges point to +x, vertical edges to +y.
func (s Side) Tangent() Point {
	if s.Horizontal() {
		return Point{1, 0}
	}
	return Point{0, 1}
}

// Normal returns the outward unit normal of the edge.
func (s Side) Normal() Point {
	switch s {
	case SideTop:
		return Point{0, -1}
	case SideRight:
		return Point{1, 0}
	case SideBottom:
		return Point{0, 1}
	default:
		return Point{-1, 0}
	}
}

// Endpoints returns the edge's start and end corners in perimeter walk
// order: top TL→TR, right TR→BR, bottom BR→BL, left BL→TL.
func (s Side) Endpoints(b Box) (Point, Point) {
	switch s {
	case SideTop:
		return b.TopLeft(), b.TopRight()
	case SideRight:
		return b.TopRight(), b.BottomRight()
	case SideBottom:
		return b.BottomRight(), b.BottomLeft()
	default:
		return b.BottomLeft(), b.TopLeft()
	}
}
