package animator

import (
	"math"
	"testing"

	"github.com/matzehuels/perimeter/pkg/geom"
)

func TestRepel(t *testing.T) {
	p := geom.Pt(100, 100)

	tests := []struct {
		name   string
		cursor Cursor
		want   geom.Point
	}{
		{"cursor on point", geom.Pt(100, 100), p},
		{"cursor at radius", geom.Pt(100, 280), p},
		{"cursor beyond radius", geom.Pt(1000, 1000), p},
		{"offscreen sentinel", Offscreen, p},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repel(p, tt.cursor, 12, 180); got != tt.want {
				t.Errorf("Repel = %+v, want %+v", got, tt.want)
			}
		})
	}

	// cursor 90px to the right: half radius → 12 * 0.5^1.25 pushed left
	got := Repel(p, geom.Pt(190, 100), 12, 180)
	wantX := 100 - 12*math.Pow(0.5, 1.25)
	if math.Abs(got.X-wantX) > 1e-9 || got.Y != 100 {
		t.Errorf("Repel = %+v, want (%v, 100)", got, wantX)
	}
}

func TestClampCorner(t *testing.T) {
	b := geom.Box{Left: 0, Top: 0, Right: 100, Bottom: 50}

	tests := []struct {
		name      string
		p         geom.Point
		left, top bool
		want      geom.Point
	}{
		{"tl inward pinned", geom.Pt(10, 10), true, true, geom.Pt(0, 0)},
		{"tl outward capped", geom.Pt(-50, -50), true, true, geom.Pt(-22, -22)},
		{"tl outward free", geom.Pt(-5, -7), true, true, geom.Pt(-5, -7)},
		{"br inward pinned", geom.Pt(90, 40), false, false, geom.Pt(100, 50)},
		{"br outward capped", geom.Pt(200, 200), false, false, geom.Pt(122, 72)},
		{"tr mixed", geom.Pt(90, -30), false, true, geom.Pt(100, -22)},
		{"bl mixed", geom.Pt(-3, 40), true, false, geom.Pt(-3, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampCorner(tt.p, b, tt.left, tt.top, 22); got != tt.want {
				t.Errorf("ClampCorner = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// outwardOffsets returns how far each corner sits outside its box corner
// along both axes.
func outwardOffsets(c Corners, b geom.Box) []float64 {
	return []float64{
		b.Left - c.TL.X, b.Top - c.TL.Y,
		c.TR.X - b.Right, b.Top - c.TR.Y,
		b.Left - c.BL.X, c.BL.Y - b.Bottom,
		c.BR.X - b.Right, c.BR.Y - b.Bottom,
	}
}

func TestCornersStayWithinOutwardBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HoverMaxOffset = 60 // stronger than MaxOutward so the cap binds
	s := Measure([]geom.Rect{
		{X: 100, Y: 100, Width: 300, Height: 200},
		{X: 150, Y: 400, Width: 200, Height: 100},
	}, cfg)

	j := NewJitter(7)
	cursors := []Cursor{
		geom.Pt(120, 120), geom.Pt(82, 82), geom.Pt(400, 300), geom.Pt(250, 350),
		geom.Pt(50, 50), Offscreen, geom.Pt(418, 318), geom.Pt(300, 500),
	}
	for tick := 0; tick < 400; tick++ {
		s = Step(s, cursors[tick%len(cursors)], cfg, j)
		for i, b := range s.Boxes {
			for k, off := range outwardOffsets(s.Corners[i], b) {
				if off < 0 || off > cfg.MaxOutward+1e-9 {
					t.Fatalf("tick %d box %d offset %d = %v, outside [0, %v]", tick, i, k, off, cfg.MaxOutward)
				}
			}
		}
	}
}

func TestHingesStayWithinEdgeAndCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PerimeterMouseFactor = 5 // exaggerate so the bounds are exercised
	cfg.PerimeterDriftTangential = 4
	cfg.PerimeterDriftNormal = 4
	s := Measure(oneSection(), cfg)
	o := *s.Outer

	j := NewJitter(99)
	for tick := 0; tick < 1000; tick++ {
		cur := geom.Pt(o.Left+float64(tick%50)*10, o.Top+float64(tick%20)*12)
		s = Step(s, cur, cfg, j)
		for _, h := range s.Hinges {
			var along, out, span float64
			switch h.Side {
			case geom.SideTop:
				along, out, span = h.Pos.X-o.Left, o.Top-h.Pos.Y, o.Width()
			case geom.SideBottom:
				along, out, span = h.Pos.X-o.Left, h.Pos.Y-o.Bottom, o.Width()
			case geom.SideLeft:
				along, out, span = h.Pos.Y-o.Top, o.Left-h.Pos.X, o.Height()
			case geom.SideRight:
				along, out, span = h.Pos.Y-o.Top, h.Pos.X-o.Right, o.Height()
			}
			if along < 0 || along > span {
				t.Fatalf("tick %d %s hinge along-edge %v outside [0, %v]", tick, h.Side, along, span)
			}
			if out < 0 || out > cfg.PerimeterOutwardCap {
				t.Fatalf("tick %d %s hinge outward %v outside [0, %v]", tick, h.Side, out, cfg.PerimeterOutwardCap)
			}
		}
	}
}

func TestOffscreenCursorLeavesCornersAtRest(t *testing.T) {
	cfg := DefaultConfig()
	s := Measure(oneSection(), cfg)
	s = Step(s, Offscreen, cfg, NewJitter(1))

	b := s.Boxes[0]
	if s.Corners[0] != cornersAt(b) {
		t.Errorf("corners moved without a cursor: %+v", s.Corners[0])
	}
}

func TestEasingConverges(t *testing.T) {
	cfg := DefaultConfig()
	s := Measure(oneSection(), cfg)
	b := s.Boxes[0]
	cur := geom.Pt(b.Left+30, b.Top+40) // inside the hover radius of TL

	target := ClampCorner(Repel(b.TopLeft(), cur, cfg.HoverMaxOffset, cfg.HoverRadius), b, true, true, cfg.MaxOutward)
	if target == b.TopLeft() {
		t.Fatal("test setup: target should differ from the corner")
	}

	prev := s.Corners[0].TL.Dist(target)
	for i := 0; i < 300; i++ {
		s = Step(s, cur, cfg, NoJitter)
		d := s.Corners[0].TL.Dist(target)
		if d > prev+1e-12 {
			t.Fatalf("tick %d: distance grew from %v to %v", i, prev, d)
		}
		if prev > 1e-6 && math.Abs(d-prev*(1-cfg.Ease)) > 1e-9 {
			t.Fatalf("tick %d: distance %v, want geometric decay to %v", i, d, prev*(1-cfg.Ease))
		}
		prev = d
	}
	if prev > 1e-9 {
		t.Errorf("distance after 300 ticks = %v, want ~0", prev)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	cfg := DefaultConfig()
	s := Measure(oneSection(), cfg)
	before := s.Clone()
	_ = Step(s, geom.Pt(90, 90), cfg, NewJitter(3))
	if s.Corners[0] != before.Corners[0] || s.Hinges[0] != before.Hinges[0] {
		t.Error("Step mutated its input state")
	}
}

func TestHingeDampingWithoutInput(t *testing.T) {
	cfg := DefaultConfig()
	s := Measure(oneSection(), cfg)
	s.Hinges[0].Vel = geom.Pt(1, 0) // top hinge sliding along +x

	next := Step(s, Offscreen, cfg, NoJitter)
	h := next.Hinges[0]
	if math.Abs(h.Vel.X-Damping) > 1e-12 {
		t.Errorf("Vel.X = %v, want %v", h.Vel.X, Damping)
	}
	if math.Abs(h.Pos.X-(s.Hinges[0].Pos.X+Damping)) > 1e-12 {
		t.Errorf("Pos.X = %v, want %v", h.Pos.X, s.Hinges[0].Pos.X+Damping)
	}
}

func TestHingeVelocityNotZeroedOnClamp(t *testing.T) {
	cfg := DefaultConfig()
	s := Measure(oneSection(), cfg)
	s.Hinges[0].Vel = geom.Pt(0, 5) // top hinge pushed inward

	next := Step(s, Offscreen, cfg, NoJitter)
	h := next.Hinges[0]
	if h.Pos.Y != s.Outer.Top {
		t.Errorf("Pos.Y = %v, want pinned at %v", h.Pos.Y, s.Outer.Top)
	}
	if h.Vel.Y <= 0 {
		t.Errorf("Vel.Y = %v, want the inward velocity retained", h.Vel.Y)
	}
}

func TestHingeRepelledByCursor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PerimeterExtrasPerSide = 1
	s := Measure(oneSection(), cfg)
	top := s.HingesOn(geom.SideTop)[0]

	cur := top.Pos.Add(geom.Pt(0, 20)) // just below (inside) the top hinge
	next := Step(s, cur, cfg, NoJitter)
	got := next.HingesOn(geom.SideTop)[0]
	if got.Pos.Y >= top.Pos.Y {
		t.Errorf("hinge should move outward (up): %v → %v", top.Pos.Y, got.Pos.Y)
	}
}

func TestReducedMotionFreezes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReducedMotion = true
	s := Measure(oneSection(), cfg)
	start := s.Clone()

	for i := 0; i < 50; i++ {
		s = Step(s, geom.Pt(90, 90), cfg, NewJitter(uint64(i)))
	}
	if s.Corners[0] != start.Corners[0] {
		t.Errorf("corners moved under reduced motion: %+v", s.Corners[0])
	}
	for i := range s.Hinges {
		if s.Hinges[i].Pos != start.Hinges[i].Pos {
			t.Errorf("hinge %d moved under reduced motion", i)
		}
	}
}

func TestSeededJitterIsReproducible(t *testing.T) {
	cfg := DefaultConfig()
	run := func() State {
		s := Measure(oneSection(), cfg)
		j := NewJitter(42)
		for i := 0; i < 100; i++ {
			s = Step(s, Offscreen, cfg, j)
		}
		return s
	}
	a, b := run(), run()
	for i := range a.Hinges {
		if a.Hinges[i] != b.Hinges[i] {
			t.Fatalf("hinge %d differs between seeded runs", i)
		}
	}
}
