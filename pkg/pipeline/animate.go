package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/observability"
	"github.com/matzehuels/perimeter/pkg/render"
	"github.com/matzehuels/perimeter/pkg/scheduler"
)

// DefaultFrames and DefaultEvery shape an animation: 60 frames, one per
// tick, two seconds at 30 fps.
const (
	DefaultFrames = 60
	DefaultEvery  = 1
	MaxFrames     = 10_000
)

// AnimateOptions configures a frame sequence. Ticks is ignored; the
// simulation runs Frames×Every ticks.
type AnimateOptions struct {
	Options

	Frames int    // number of frames to capture
	Every  int    // ticks between captured frames
	Format string // svg or png; txt is accepted for terminal playback
}

// Sequence is the output of Animate.
type Sequence struct {
	Format   string
	Frames   [][]byte
	Hashes   []string // state hash per frame
	Interval time.Duration
	Stats    Stats
	Hits     int // frames served from the artifact cache
}

// ValidateAndSetDefaults checks the animation options and fills defaults.
func (o *AnimateOptions) ValidateAndSetDefaults() error {
	if o.Frames == 0 {
		o.Frames = DefaultFrames
	}
	if o.Every == 0 {
		o.Every = DefaultEvery
	}
	if o.Format == "" {
		o.Format = render.FormatSVG
	}
	if o.Frames < 0 || o.Frames > MaxFrames {
		return errors.New(errors.ErrCodeInvalidInput, "frames must be in [1, %d], got %d", MaxFrames, o.Frames)
	}
	if o.Every < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "every must be positive, got %d", o.Every)
	}
	if o.Frames*o.Every > MaxTicks {
		return errors.New(errors.ErrCodeInvalidInput, "animation too long: %d ticks (max %d)", o.Frames*o.Every, MaxTicks)
	}
	o.Ticks = o.Frames * o.Every
	o.Formats = []string{o.Format}
	return o.Options.ValidateAndSetDefaults()
}

// Animate simulates the scene and encodes a frame every Every ticks.
// Snapshots are taken during the simulation; encoding runs concurrently,
// bounded by GOMAXPROCS, and each frame goes through the artifact cache.
func (r *Runner) Animate(ctx context.Context, opts AnimateOptions) (*Sequence, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	src, script, err := r.Load(opts.Options)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	start := time.Now()
	snapshots := make([]animator.Frame, 0, opts.Frames)
	_, err = Simulate(ctx, src, script, opts.Options, func(tick int, a *animator.Animator) error {
		if tick%opts.Every == 0 {
			snapshots = append(snapshots, a.Frame())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	simTime := time.Since(start)

	start = time.Now()
	seq := &Sequence{
		Format:   opts.Format,
		Frames:   make([][]byte, len(snapshots)),
		Hashes:   make([]string, len(snapshots)),
		Interval: time.Duration(opts.Every) * scheduler.Interval(opts.Config.FPS),
	}
	hits := make([]bool, len(snapshots))

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range snapshots {
		g.Go(func() error {
			hash := frameHash(f)
			data, hit, err := r.renderFormat(gctx, f, hash, opts.Format, opts.Options)
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			seq.Frames[i], seq.Hashes[i], hits[i] = data, hash, hit
			return nil
		})
	}
	err = g.Wait()
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	for _, h := range hits {
		if h {
			seq.Hits++
		}
	}
	if len(snapshots) > 0 {
		last := snapshots[len(snapshots)-1].State
		seq.Stats.Sections, seq.Stats.Hinges = len(last.Boxes), len(last.Hinges)
	}
	seq.Stats.Ticks = opts.Ticks
	seq.Stats.SimulateTime = simTime
	seq.Stats.RenderTime = time.Since(start)
	return seq, nil
}
