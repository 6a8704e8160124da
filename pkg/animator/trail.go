package animator

import (
	"time"

	"github.com/matzehuels/perimeter/pkg/geom"
)

const (
	// TrailLifetime is how long a particle stays visible.
	TrailLifetime = 500 * time.Millisecond

	trailMinSize = 3
	trailSpread  = 5
	maxParticles = 256
)

// Particle is one dot of the cursor trail.
type Particle struct {
	Pos   geom.Point
	Size  float64 // diameter in CSS pixels, in [3, 8)
	Color Color
	Born  time.Time
}

// Trail is a short-lived particle stream following the cursor.
// It is not safe for concurrent use; Animator guards it.
type Trail struct {
	particles []Particle
	palette   []Color
	rng       Jitter
}

// NewTrail creates an empty trail drawing colors from palette.
func NewTrail(palette []Color, rng Jitter) *Trail {
	if rng == nil {
		rng = NoJitter
	}
	return &Trail{palette: palette, rng: rng}
}

// Spawn adds a particle at p. When the trail is full the oldest particle is
// dropped.
func (t *Trail) Spawn(p geom.Point, now time.Time) {
	if len(t.palette) == 0 {
		return
	}
	idx := min(int(t.rng.Float64()*float64(len(t.palette))), len(t.palette)-1)
	part := Particle{
		Pos:   p,
		Size:  t.rng.Float64()*trailSpread + trailMinSize,
		Color: t.palette[idx],
		Born:  now,
	}
	if len(t.particles) >= maxParticles {
		t.particles = t.particles[1:]
	}
	t.particles = append(t.particles, part)
}

// Prune drops particles older than TrailLifetime.
func (t *Trail) Prune(now time.Time) {
	keep := t.particles[:0]
	for _, p := range t.particles {
		if now.Sub(p.Born) < TrailLifetime {
			keep = append(keep, p)
		}
	}
	t.particles = keep
}

// Particles returns a copy of the live particles, oldest first.
func (t *Trail) Particles() []Particle {
	return append([]Particle(nil), t.particles...)
}

// Len returns the number of live particles.
func (t *Trail) Len() int { return len(t.particles) }
