package animator

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/observability"
)

// Frame is an immutable snapshot of everything a renderer draws.
type Frame struct {
	Container layout.Container
	State     State
	Trail     []Particle
	Palette   Palette
	Config    Config
	Cursor    Cursor
	At        time.Time // time of the last Tick; zero before the first
}

// Option configures an Animator.
type Option func(*Animator)

// WithJitter sets the random source for hinge drift and trail particles.
func WithJitter(j Jitter) Option {
	return func(a *Animator) {
		if j != nil {
			a.jitter = j
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.logger = l
		}
	}
}

// Animator owns the animation state for one container.
//
// Host events (resize, pointer move/leave) and the frame loop may arrive
// from different goroutines; every method is serialized by a mutex, and the
// cursor is a latest-sample value where the last write wins.
type Animator struct {
	mu sync.Mutex

	src     layout.Source
	cfg     Config
	palette Palette
	jitter  Jitter
	logger  *log.Logger

	container layout.Container
	state     State
	cursor    Cursor
	trail     *Trail
	ticks     uint64
	at        time.Time
}

// New validates cfg and performs the initial measurement.
func New(src layout.Source, cfg Config, opts ...Option) (*Animator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	palette, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	a := &Animator{
		src:     src,
		cfg:     cfg,
		palette: palette,
		jitter:  NoJitter,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		cursor:  Offscreen,
	}
	for _, opt := range opts {
		opt(a)
	}
	if cfg.Trail {
		a.trail = NewTrail(palette.Trail, a.jitter)
	}
	a.Remeasure()
	return a, nil
}

// Config returns the animator's configuration.
func (a *Animator) Config() Config { return a.cfg }

// Remeasure re-reads the layout and replaces all node state. In-flight
// corner motion and hinge velocities are discarded.
func (a *Animator) Remeasure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.remeasureLocked()
}

func (a *Animator) remeasureLocked() {
	start := time.Now()
	if a.src != nil {
		a.container = a.src.Container().Normalized()
	}
	a.state = MeasureSource(a.src, a.cfg)
	elapsed := time.Since(start)

	observability.Frame().OnMeasure(len(a.state.Boxes), len(a.state.Hinges), elapsed)
	a.logger.Debug("measured layout",
		"sections", len(a.state.Boxes),
		"hinges", len(a.state.Hinges),
		"width", a.container.Width,
		"height", a.container.Height)
}

// SetViewport applies a host resize. Sources that cannot be resized keep
// their geometry; the layout is remeasured either way.
func (a *Animator) SetViewport(c layout.Container) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if r, ok := a.src.(layout.Resizable); ok {
		r.SetContainer(c)
	}
	a.remeasureLocked()
}

// MoveCursor records a pointer sample in container coordinates. Every
// sample except the offscreen sentinel spawns a trail particle, including
// points in the top-left gutter.
func (a *Animator) MoveCursor(x, y float64, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cursor = Cursor{X: x, Y: y}
	if a.trail != nil && a.cursor != Offscreen {
		a.trail.Spawn(a.cursor, at)
	}
}

// LeaveCursor records that the pointer left the container.
func (a *Animator) LeaveCursor() {
	a.mu.Lock()
	a.cursor = Offscreen
	a.mu.Unlock()
}

// Cursor returns the latest cursor sample.
func (a *Animator) Cursor() Cursor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cursor
}

// Tick advances the animation by one physics step.
func (a *Animator) Tick(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	a.state = Step(a.state, a.cursor, a.cfg, a.jitter)
	if a.trail != nil {
		a.trail.Prune(now)
	}
	a.ticks++
	a.at = now
	observability.Frame().OnStep(time.Since(start))
}

// Ticks returns how many steps have run since creation.
func (a *Animator) Ticks() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ticks
}

// State returns a deep copy of the current node state.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// Frame returns a snapshot for rendering. Scrolling only needs a new
// Frame, never a remeasure.
func (a *Animator) Frame() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := Frame{
		Container: a.container,
		State:     a.state.Clone(),
		Palette:   a.palette,
		Config:    a.cfg,
		Cursor:    a.cursor,
		At:        a.at,
	}
	if a.trail != nil {
		f.Trail = a.trail.Particles()
	}
	return f
}
