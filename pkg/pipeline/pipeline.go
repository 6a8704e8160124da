// Package pipeline renders animator frames offline.
//
// It is the shared core of the render and animate commands: load a scene,
// simulate a number of ticks under the scene's cursor script, and encode
// the resulting frame in one or more formats. Both stages are cached; a
// seeded simulation is deterministic, so identical inputs give identical
// frames.
//
// # Stages
//
//  1. Simulate: measure the layout, then step N ticks with a seeded jitter
//     while replaying cursor samples at their ticks
//  2. Render: encode the final frame as SVG, PNG or terminal text
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Scene:   "site.toml",
//	    Ticks:   90,
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/cache"
	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/render"
)

const (
	// DefaultTicks simulates three seconds at the default 30 fps, enough
	// for corner easing to settle.
	DefaultTicks = 90

	// DefaultSeed is the default jitter seed for reproducible output.
	DefaultSeed = uint64(42)

	// DefaultCols and DefaultRows size terminal text output.
	DefaultCols = 100
	DefaultRows = 32

	// MaxTicks bounds a single simulation.
	MaxTicks = 100_000
)

// Options configures a pipeline run.
type Options struct {
	// Input: a scene path, or a source plus cursor script.
	Scene  string                `json:"scene,omitempty"`
	Source layout.Source         `json:"-"`
	Script []layout.CursorSample `json:"cursor,omitempty"`

	// Simulation
	Config animator.Config `json:"config"`
	Ticks  int             `json:"ticks,omitempty"`
	Seed   uint64          `json:"seed,omitempty"`

	// Render
	Formats    []string `json:"formats,omitempty"`
	DPR        float64  `json:"dpr,omitempty"` // overrides the scene's device pixel ratio
	Background string   `json:"background,omitempty"`
	NoGlow     bool     `json:"no_glow,omitempty"`
	NoTrail    bool     `json:"no_trail,omitempty"`
	Cols       int      `json:"cols,omitempty"`
	Rows       int      `json:"rows,omitempty"`

	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of a pipeline run.
type Result struct {
	// Frame is the final simulated frame.
	Frame animator.Frame

	// SceneHash identifies the layout and cursor script.
	SceneHash string

	// StateHash identifies the simulated frame.
	StateHash string

	// Artifacts holds encoded output keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timing and size information.
type Stats struct {
	Sections     int
	Hinges       int
	Ticks        int
	SimulateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo records which stages were served from cache.
type CacheInfo struct {
	SimulateHit bool
	RenderHit   bool
}

// ValidateFormats checks every format name.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !render.ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: svg, png, txt)", f)
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Scene == "" && o.Source == nil {
		return errors.New(errors.ErrCodeInvalidInput, "a scene path or layout source is required")
	}
	if o.Scene != "" {
		if err := errors.ValidateSceneFilename(o.Scene); err != nil {
			return err
		}
	}
	if o.Config == (animator.Config{}) {
		o.Config = animator.DefaultConfig()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if o.Ticks < 0 || o.Ticks > MaxTicks {
		return errors.New(errors.ErrCodeInvalidInput, "ticks must be in [0, %d], got %d", MaxTicks, o.Ticks)
	}
	if o.DPR < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "dpr must not be negative")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Background != "" {
		if _, err := animator.ParseColor(o.Background); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// SetRenderDefaults fills unset render options.
func (o *Options) SetRenderDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if o.Cols == 0 {
		o.Cols = DefaultCols
	}
	if o.Rows == 0 {
		o.Rows = DefaultRows
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SimulationKeyOpts returns the cache key inputs for the simulate stage.
func (o *Options) SimulationKeyOpts() cache.SimulationKeyOpts {
	h, _ := cache.HashJSON(o.Config)
	return cache.SimulationKeyOpts{ConfigHash: h, Ticks: o.Ticks, Seed: o.Seed}
}

// ArtifactKeyOpts returns the cache key inputs for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Background: o.Background,
		NoGlow:     o.NoGlow,
		NoTrail:    o.NoTrail,
	}
	switch format {
	case render.FormatPNG:
		k.DPR = o.DPR
	case render.FormatText:
		k.Cols, k.Rows = o.Cols, o.Rows
	}
	return k
}

func (o *Options) String() string {
	src := o.Scene
	if src == "" {
		src = "<source>"
	}
	return fmt.Sprintf("%s ticks=%d seed=%d formats=%v", src, o.Ticks, o.Seed, o.Formats)
}
