package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestInterval(t *testing.T) {
	tests := []struct {
		fps  float64
		want time.Duration
	}{
		{30, time.Second / 30},
		{60, time.Second / 60},
		{1, time.Second},
		{0.5, 2 * time.Second},
		{0, 0},
		{-5, 0},
	}
	for _, tt := range tests {
		got := Interval(tt.fps)
		diff := got - tt.want
		if diff < -time.Microsecond || diff > time.Microsecond {
			t.Errorf("Interval(%v) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}

func TestOfferGate(t *testing.T) {
	var calls []time.Time
	l := NewLoop(30, func(now time.Time) { calls = append(calls, now) })

	t0 := time.Unix(1000, 0)
	steps := []struct {
		at   time.Duration
		want bool
	}{
		{0, true}, // first frame always runs
		{16 * time.Millisecond, false},
		{33 * time.Millisecond, false},
		{34 * time.Millisecond, true},
		{50 * time.Millisecond, false},
		{67 * time.Millisecond, false},
		{68 * time.Millisecond, true},
	}
	for _, s := range steps {
		if got := l.Offer(t0.Add(s.at)); got != s.want {
			t.Errorf("Offer(+%v) = %v, want %v", s.at, got, s.want)
		}
	}
	if len(calls) != 3 {
		t.Fatalf("frame called %d times, want 3", len(calls))
	}
	frames, skipped := l.Stats()
	if frames != 3 || skipped != 4 {
		t.Errorf("Stats = %d/%d, want 3/4", frames, skipped)
	}
}

func TestOfferOn60HzHostHalvesRate(t *testing.T) {
	var n int
	l := NewLoop(30, func(time.Time) { n++ })
	t0 := time.Unix(0, 0)
	// a host ticking at just over half the frame interval
	refresh := (l.Interval() + 1) / 2
	for i := 0; i < 60; i++ {
		l.Offer(t0.Add(time.Duration(i) * refresh))
	}
	if n != 30 {
		t.Errorf("frames = %d, want every other callback (30)", n)
	}
}

func TestStartStop(t *testing.T) {
	var n atomic.Int64
	l := NewLoop(1000, func(time.Time) { n.Add(1) }, WithRefresh(time.Millisecond))

	l.Start(context.Background())
	l.Start(context.Background()) // second start is a no-op
	if !l.Running() {
		t.Fatal("loop should be running")
	}

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	l.Stop()
	if l.Running() {
		t.Fatal("loop should be stopped")
	}
	if n.Load() < 3 {
		t.Fatalf("frames = %d, want >= 3", n.Load())
	}

	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	if n.Load() != after {
		t.Error("frames ran after Stop returned")
	}
	l.Stop() // idempotent
}

func TestRunStopsOnCancel(t *testing.T) {
	l := NewLoop(30, nil, WithRefresh(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWithClock(t *testing.T) {
	fixed := time.Unix(42, 0)
	var got time.Time
	l := NewLoop(30, func(now time.Time) { got = now }, WithClock(func() time.Time { return fixed }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = l.Run(ctx)
	if !got.Equal(fixed) {
		t.Errorf("frame time = %v, want %v", got, fixed)
	}
}
