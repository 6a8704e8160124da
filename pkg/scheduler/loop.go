// Package scheduler drives the animation with a single frame loop.
//
// The host calls back at its own refresh cadence (a display's 60 Hz, a
// terminal's tick, an HTTP session ticker). [Loop.Offer] is a soft gate in
// front of that cadence: a frame runs only when at least one target
// interval has passed since the previous one, so a 30 fps animation on a
// 60 Hz host runs on every other callback.
package scheduler

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/perimeter/pkg/observability"
)

// DefaultRefresh is the host callback cadence used by Run.
var DefaultRefresh = Interval(60)

// Interval returns the frame duration for a target frame rate.
// Non-positive rates yield zero, which lets every callback through.
func Interval(fps float64) time.Duration {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0
	}
	secs := 1 / fps
	if fps == math.Trunc(fps) && fps <= math.MaxInt32 {
		secs = harmonica.FPS(int(fps))
	}
	return time.Duration(secs * float64(time.Second))
}

// FrameFunc is called for every frame the gate lets through.
type FrameFunc func(now time.Time)

// Option configures a Loop.
type Option func(*Loop)

// WithRefresh sets the host callback cadence used by Run.
func WithRefresh(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.refresh = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		if now != nil {
			l.clock = now
		}
	}
}

// WithLogger sets the logger for loop start/stop events.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Loop is a frame loop with a soft FPS gate. At most one Run is active at a
// time; frames never overlap.
type Loop struct {
	interval time.Duration
	refresh  time.Duration
	frame    FrameFunc
	clock    func() time.Time
	logger   *log.Logger

	mu      sync.Mutex
	last    time.Time
	ran     bool
	frames  uint64
	skipped uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a stopped loop targeting fps frames per second.
func NewLoop(fps float64, frame FrameFunc, opts ...Option) *Loop {
	l := &Loop{
		interval: Interval(fps),
		refresh:  DefaultRefresh,
		frame:    frame,
		clock:    time.Now,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the target frame duration.
func (l *Loop) Interval() time.Duration { return l.interval }

// Offer is one host callback. It runs the frame and returns true when this
// is the first frame or at least one interval has elapsed since the last
// frame; otherwise it skips and returns false.
func (l *Loop) Offer(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ran && now.Sub(l.last) < l.interval {
		l.skipped++
		observability.Frame().OnSkip()
		return false
	}
	l.last = now
	l.ran = true
	l.frames++
	if l.frame != nil {
		l.frame(now)
	}
	return true
}

// Stats returns how many callbacks ran a frame and how many were skipped.
func (l *Loop) Stats() (frames, skipped uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames, l.skipped
}

// Run offers a frame at every refresh tick until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.refresh)
	defer ticker.Stop()

	l.logger.Debug("frame loop started", "interval", l.interval, "refresh", l.refresh)
	defer l.logger.Debug("frame loop stopped")

	l.Offer(l.clock())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Offer(l.clock())
		}
	}
}

// Start runs the loop in a background goroutine. Starting a running loop
// is a no-op.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
}

// Stop withdraws the pending callback and waits for the loop goroutine to
// exit. Stopping a stopped loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether Start has been called without a matching Stop.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}
