package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/geom"
	"github.com/matzehuels/perimeter/pkg/layout"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newSession(t *testing.T, clock *fakeClock) *Session {
	t.Helper()
	src := layout.NewStatic(layout.Container{Width: 400, Height: 300},
		[]geom.Rect{{X: 50, Y: 50, Width: 200, Height: 100}})
	s, err := New(src, animator.DefaultConfig(), WithSeed(1), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNewSession(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	s := newSession(t, clock)

	if err := errors.ValidateSessionID(s.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", s.ID, err)
	}
	if !s.CreatedAt.Equal(clock.Now()) {
		t.Errorf("CreatedAt = %v", s.CreatedAt)
	}
	if s.Animator() == nil || len(s.Animator().State().Boxes) != 1 {
		t.Error("animator not measured")
	}
	if s.Running() {
		t.Error("new sessions start stopped")
	}
}

func TestNewSessionInvalidConfig(t *testing.T) {
	cfg := animator.DefaultConfig()
	cfg.Ease = 0
	if _, err := New(layout.NewStatic(layout.Container{}, nil), cfg); err == nil {
		t.Error("expected config error")
	}
}

func TestSessionLoopTicksAnimator(t *testing.T) {
	s, err := New(layout.NewStatic(layout.Container{Width: 100, Height: 100}, nil),
		animator.DefaultConfig(), WithRefresh(time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	s.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for s.Animator().Ticks() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	if s.Animator().Ticks() < 2 {
		t.Errorf("Ticks = %d, want >= 2", s.Animator().Ticks())
	}
}

func TestStoreGetAndExpire(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	st := NewStore(time.Minute, WithStoreClock(clock.Now))
	s := newSession(t, clock)
	if err := st.Add(s); err != nil {
		t.Fatal(err)
	}

	got, err := st.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}

	// activity keeps the session alive
	clock.Advance(50 * time.Second)
	if _, err := st.Get(s.ID); err != nil {
		t.Fatalf("Get after 50s: %v", err)
	}
	clock.Advance(50 * time.Second)
	if _, err := st.Get(s.ID); err != nil {
		t.Fatalf("Get 50s after last access: %v", err)
	}

	clock.Advance(61 * time.Second)
	if _, err := st.Get(s.ID); err != ErrExpired {
		t.Fatalf("Get after idle = %v, want ErrExpired", err)
	}
	if _, err := st.Get(s.ID); err != ErrNotFound {
		t.Errorf("second Get = %v, want ErrNotFound", err)
	}
	if st.Len() != 0 {
		t.Errorf("Len = %d, want 0", st.Len())
	}
}

func TestStoreGetErrors(t *testing.T) {
	st := NewStore(0)
	if st.TTL() != DefaultTTL {
		t.Errorf("TTL = %v, want default", st.TTL())
	}

	tests := []struct {
		id   string
		code errors.Code
	}{
		{"", errors.ErrCodeInvalidInput},
		{"nope", errors.ErrCodeInvalidInput},
		{"7d444840-9dc0-11d1-b245-5ffdce74fad2", errors.ErrCodeSessionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := st.Get(tt.id)
			if errors.GetCode(err) != tt.code {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestStoreMaxSessions(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	st := NewStore(time.Minute, WithMaxSessions(1), WithStoreClock(clock.Now))
	if err := st.Add(newSession(t, clock)); err != nil {
		t.Fatal(err)
	}
	if err := st.Add(newSession(t, clock)); err == nil {
		t.Error("second session should exceed the limit")
	}
}

func TestStoreDelete(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	st := NewStore(time.Minute)
	s := newSession(t, clock)
	_ = st.Add(s)
	s.Start(context.Background())

	if err := st.Delete(s.ID); err != nil {
		t.Fatal(err)
	}
	if s.Running() {
		t.Error("Delete should stop the loop")
	}
	if err := st.Delete(s.ID); err != ErrNotFound {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestStoreSweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	st := NewStore(time.Minute, WithStoreClock(clock.Now))

	idle := newSession(t, clock)
	active := newSession(t, clock)
	_ = st.Add(idle)
	_ = st.Add(active)
	idle.Start(context.Background())

	clock.Advance(45 * time.Second)
	active.Touch(clock.Now())
	clock.Advance(30 * time.Second)

	if n := st.Sweep(); n != 1 {
		t.Fatalf("Sweep = %d, want 1", n)
	}
	if idle.Running() {
		t.Error("swept session still running")
	}
	if _, err := st.Get(active.ID); err != nil {
		t.Errorf("active session swept: %v", err)
	}
}

func TestRunJanitor(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	st := NewStore(time.Second, WithStoreClock(clock.Now))
	_ = st.Add(newSession(t, clock))
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- st.RunJanitor(ctx, time.Millisecond) }()

	deadline := time.Now().Add(2 * time.Second)
	for st.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("RunJanitor = %v", err)
	}
	if st.Len() != 0 {
		t.Error("janitor did not sweep the idle session")
	}
}

func TestStoreClose(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	st := NewStore(time.Minute)
	s := newSession(t, clock)
	_ = st.Add(s)
	s.Start(context.Background())

	st.Close()
	if s.Running() || st.Len() != 0 {
		t.Error("Close should stop and drop every session")
	}
}
