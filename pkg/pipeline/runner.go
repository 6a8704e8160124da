package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perimeter/pkg/cache"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeSimulation = "simulation"
	keyTypeArtifact   = "artifact"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no per-run state, so one Runner may serve concurrent
// runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute loads the scene, simulates it and renders every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	src, script, err := r.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	start := time.Now()
	sim, simHit, err := r.SimulateWithCacheInfo(ctx, src, script, opts)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	simTime := time.Since(start)

	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, sim, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	return &Result{
		Frame:     sim.Frame,
		SceneHash: sim.SceneHash,
		StateHash: sim.StateHash,
		Artifacts: artifacts,
		Stats: Stats{
			Sections:     len(sim.Frame.State.Boxes),
			Hinges:       len(sim.Frame.State.Hinges),
			Ticks:        opts.Ticks,
			SimulateTime: simTime,
			RenderTime:   time.Since(start),
		},
		CacheInfo: CacheInfo{SimulateHit: simHit, RenderHit: renderHit},
	}, nil
}

// Load resolves the layout source and cursor script from the options.
// An explicit Source wins over a scene path; an explicit Script wins over
// the scene's own cursor samples.
func (r *Runner) Load(opts Options) (layout.Source, []layout.CursorSample, error) {
	if opts.Source != nil {
		return opts.Source, opts.Script, nil
	}
	src, scene, err := layout.Load(opts.Scene)
	if err != nil {
		return nil, nil, err
	}
	script := scene.Cursor
	if opts.Script != nil {
		script = opts.Script
	}
	r.Logger.Debug("loaded scene",
		"path", opts.Scene,
		"sections", len(src.Sections()),
		"cursor_samples", len(script))
	return src, script, nil
}

func (r *Runner) get(ctx context.Context, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		ok = false
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, ok
}

func (r *Runner) set(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
