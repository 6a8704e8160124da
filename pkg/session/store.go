package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perimeter/pkg/errors"
)

// Store holds live sessions in memory. It is safe for concurrent use.
type Store struct {
	ttl    time.Duration
	max    int
	now    func() time.Time
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxSessions caps concurrent sessions; zero means unlimited.
func WithMaxSessions(n int) StoreOption { return func(s *Store) { s.max = n } }

// WithStoreClock replaces time.Now.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStoreLogger sets the logger for expiry events.
func WithStoreLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates an empty store. A non-positive ttl means DefaultTTL.
func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		ttl:      ttl,
		now:      time.Now,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the idle timeout.
func (st *Store) TTL() time.Duration { return st.ttl }

// Add registers a session.
func (st *Store) Add(s *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.sessions) >= st.max {
		return errors.New(errors.ErrCodeUnsupported, "session limit of %d reached", st.max)
	}
	s.Touch(st.now())
	st.sessions[s.ID] = s
	return nil
}

// Get returns a live session and marks it active. An expired session is
// stopped, removed and reported as ErrExpired.
func (st *Store) Get(id string) (*Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	now := st.now()

	st.mu.Lock()
	s, ok := st.sessions[id]
	expired := ok && s.IsExpired(now, st.ttl)
	if expired {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}
	if expired {
		s.Stop()
		st.logger.Debug("session expired on access", "id", id)
		return nil, ErrExpired
	}
	s.Touch(now)
	return s, nil
}

// Delete stops and removes a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Stop()
	return nil
}

// Len returns the number of registered sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep stops and removes every expired session and returns how many were
// removed.
func (st *Store) Sweep() int {
	now := st.now()
	var expired []*Session

	st.mu.Lock()
	for id, s := range st.sessions {
		if s.IsExpired(now, st.ttl) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Stop()
		st.logger.Debug("session expired", "id", s.ID, "idle", now.Sub(s.LastSeen()).Round(time.Second))
	}
	return len(expired)
}

// RunJanitor sweeps at every interval until ctx is cancelled.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.logger.Info("swept sessions", "expired", n, "live", st.Len())
			}
		}
	}
}

// Close stops and removes every session.
func (st *Store) Close() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range all {
		s.Stop()
	}
}
