package pipeline

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/cache"
	"github.com/matzehuels/perimeter/pkg/geom"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/observability"
	"github.com/matzehuels/perimeter/pkg/scheduler"
)

// Epoch is the wall-clock time of tick zero in every simulation. Tick i
// runs at Epoch + i frame intervals, so particle ages and frame timestamps
// are reproducible.
var Epoch = time.Unix(0, 0).UTC()

// Simulation is the output of the simulate stage.
type Simulation struct {
	Frame     animator.Frame `json:"frame"`
	SceneHash string         `json:"scene_hash"`
	StateHash string         `json:"state_hash"`
}

// sceneInput is everything about the input that changes a simulation,
// apart from the options hashed into the key itself.
type sceneInput struct {
	Container layout.Container      `json:"container"`
	Sections  []geom.Rect           `json:"sections"`
	Script    []layout.CursorSample `json:"script,omitempty"`
}

// SceneHash identifies a layout and cursor script.
func SceneHash(src layout.Source, script []layout.CursorSample) string {
	h, _ := cache.HashJSON(sceneInput{
		Container: src.Container().Normalized(),
		Sections:  src.Sections(),
		Script:    sortScript(script),
	})
	return h
}

// SimulateWithCacheInfo runs the simulate stage and reports whether the
// result came from cache.
func (r *Runner) SimulateWithCacheInfo(ctx context.Context, src layout.Source, script []layout.CursorSample, opts Options) (*Simulation, bool, error) {
	sceneHash := SceneHash(src, script)
	key := r.Keyer.SimulationKey(sceneHash, opts.SimulationKeyOpts())

	if data, ok := r.get(ctx, key, keyTypeSimulation, opts.Refresh); ok {
		var sim Simulation
		if err := json.Unmarshal(data, &sim); err == nil {
			r.Logger.Debug("simulation cache hit", "scene", short(sceneHash))
			return &sim, true, nil
		}
		r.Logger.Warn("discarding corrupt simulation cache entry", "key", key)
	}

	sim, err := Simulate(ctx, src, script, opts, nil)
	if err != nil {
		return nil, false, err
	}
	sim.SceneHash = sceneHash

	if data, err := json.Marshal(sim); err == nil {
		r.set(ctx, key, keyTypeSimulation, data, cache.SimulationTTL)
	}
	return sim, false, nil
}

// Simulate steps a fresh animator opts.Ticks times, replaying cursor samples
// just before the tick they name. Samples at or past opts.Ticks never
// apply. If visit is non-nil it is called after every tick with the
// one-based tick count.
//
// With the same inputs and seed the final frame is identical across runs.
func Simulate(ctx context.Context, src layout.Source, script []layout.CursorSample, opts Options, visit func(tick int, a *animator.Animator) error) (*Simulation, error) {
	if opts.Scene == "" && opts.Source == nil {
		opts.Source = src
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	anim, err := animator.New(src, opts.Config,
		animator.WithJitter(animator.NewJitter(opts.Seed)),
		animator.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}

	sections := len(anim.State().Boxes)
	observability.Pipeline().OnSimulateStart(ctx, sections, opts.Ticks)
	start := time.Now()

	interval := scheduler.Interval(opts.Config.FPS)
	samples := sortScript(script)
	next := 0
	for i := 0; i < opts.Ticks; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		now := Epoch.Add(time.Duration(i) * interval)
		for ; next < len(samples) && samples[next].Tick <= i; next++ {
			if s := samples[next]; s.Leave {
				anim.LeaveCursor()
			} else {
				anim.MoveCursor(s.X, s.Y, now)
			}
		}
		anim.Tick(now)
		if visit != nil {
			if err := visit(i+1, anim); err != nil {
				return nil, err
			}
		}
	}

	observability.Pipeline().OnSimulateComplete(ctx, opts.Ticks, time.Since(start))
	opts.Logger.Debug("simulated",
		"sections", sections,
		"ticks", opts.Ticks,
		"elapsed", time.Since(start))

	frame := anim.Frame()
	return &Simulation{Frame: frame, StateHash: frameHash(frame)}, nil
}

// frameHash identifies a frame's drawable content.
func frameHash(f animator.Frame) string {
	h, _ := cache.HashJSON(f)
	return h
}

// sortScript returns the samples ordered by tick. Samples sharing a tick
// keep their file order, so the last one wins.
func sortScript(script []layout.CursorSample) []layout.CursorSample {
	if len(script) == 0 {
		return nil
	}
	out := slices.Clone(script)
	slices.SortStableFunc(out, func(a, b layout.CursorSample) int { return cmp.Compare(a.Tick, b.Tick) })
	return out
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
