// Package session manages live viewer sessions for the frame server.
//
// A session is one viewer of a scene: its own animator (cursor, node state,
// trail) and its own frame loop. Sessions expire after an idle TTL; any
// request for a session counts as activity. A janitor sweeps expired
// sessions and stops their loops.
//
//	store := session.NewStore(10*time.Minute)
//	sess, err := session.New(src, cfg, session.WithSeed(42))
//	store.Add(sess)
//	sess.Start(ctx)
//	defer store.Close()
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/scheduler"
)

// Errors returned by Store lookups.
var (
	ErrNotFound = errors.New(errors.ErrCodeSessionNotFound, "session not found")
	ErrExpired  = errors.New(errors.ErrCodeSessionExpired, "session expired")
)

// DefaultTTL is the idle time after which a session expires.
const DefaultTTL = 10 * time.Minute

// Session is one viewer's animation.
type Session struct {
	ID        string
	CreatedAt time.Time

	anim *animator.Animator
	loop *scheduler.Loop

	mu       sync.Mutex
	lastSeen time.Time
}

// Option configures a new Session.
type Option func(*options)

type options struct {
	seed    uint64
	seeded  bool
	logger  *log.Logger
	refresh time.Duration
	now     func() time.Time
}

// WithSeed makes hinge drift reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed, o.seeded = seed, true }
}

// WithLogger sets the logger for the session's animator and loop.
func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithRefresh sets the loop's host cadence.
func WithRefresh(d time.Duration) Option { return func(o *options) { o.refresh = d } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// New creates a stopped session with a fresh UUID. The source should be
// private to the session, since viewport changes resize it.
func New(src layout.Source, cfg animator.Config, opts ...Option) (*Session, error) {
	o := options{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New()
	seed := o.seed
	if !o.seeded {
		seed = uint64(id.ID())
	}
	logger := o.logger.With("session", id.String()[:8])

	anim, err := animator.New(src, cfg,
		animator.WithJitter(animator.NewJitter(seed)),
		animator.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	now := o.now()
	s := &Session{
		ID:        id.String(),
		CreatedAt: now,
		anim:      anim,
		lastSeen:  now,
	}
	loopOpts := []scheduler.Option{scheduler.WithLogger(logger), scheduler.WithClock(o.now)}
	if o.refresh > 0 {
		loopOpts = append(loopOpts, scheduler.WithRefresh(o.refresh))
	}
	s.loop = scheduler.NewLoop(cfg.FPS, anim.Tick, loopOpts...)
	return s, nil
}

// Animator returns the session's animator.
func (s *Session) Animator() *animator.Animator { return s.anim }

// Start begins the frame loop.
func (s *Session) Start(ctx context.Context) { s.loop.Start(ctx) }

// Stop ends the frame loop and waits for it to exit.
func (s *Session) Stop() { s.loop.Stop() }

// Running reports whether the frame loop is active.
func (s *Session) Running() bool { return s.loop.Running() }

// Touch records viewer activity.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	s.mu.Unlock()
}

// LastSeen returns the time of the latest activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// IsExpired reports whether the session has been idle longer than ttl.
func (s *Session) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastSeen()) > ttl
}
