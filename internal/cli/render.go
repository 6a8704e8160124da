package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/config"
	"github.com/matzehuels/perimeter/pkg/pipeline"
	"github.com/matzehuels/perimeter/pkg/render"
)

// renderFlags holds the flags shared by render and animate.
type renderFlags struct {
	output        string
	formats       string
	seed          uint64
	dpr           float64
	background    string
	noGlow        bool
	noTrail       bool
	noCache       bool
	theme         string
	fps           float64
	trail         bool
	reducedMotion bool
	cols, rows    int
	copy          bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "jitter seed")
	fl.Float64Var(&f.dpr, "dpr", 0, "device pixel ratio for PNG output (default: the scene's)")
	fl.StringVar(&f.background, "background", "", "fill color behind the frame, e.g. #0b1020")
	fl.BoolVar(&f.noGlow, "no-glow", false, "omit glow shadows")
	fl.BoolVar(&f.noTrail, "no-trail", false, "omit cursor trail particles")
	fl.BoolVar(&f.noCache, "no-cache", false, "bypass the artifact cache")
	fl.StringVar(&f.theme, "theme", "", "palette preset: dark or light")
	fl.Float64Var(&f.fps, "fps", 0, "simulation frame rate (default from config)")
	fl.BoolVar(&f.trail, "trail", false, "spawn cursor trail particles")
	fl.BoolVar(&f.reducedMotion, "reduced-motion", false, "freeze hinge drift and cursor response")
	fl.IntVar(&f.cols, "cols", pipeline.DefaultCols, "columns for txt output")
	fl.IntVar(&f.rows, "rows", pipeline.DefaultRows, "rows for txt output")
}

// animatorConfig applies flags that were set on top of the loaded config.
func (f *renderFlags) animatorConfig(cmd *cobra.Command, cfg animator.Config) animator.Config {
	changed := cmd.Flags().Changed
	if changed("theme") {
		cfg.Theme = f.theme
	}
	if changed("fps") {
		cfg.FPS = f.fps
	}
	if changed("trail") {
		cfg.Trail = f.trail
	}
	if changed("reduced-motion") {
		cfg.ReducedMotion = f.reducedMotion
	}
	return cfg
}

func (f *renderFlags) options(cmd *cobra.Command, scene string, cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Scene:      scene,
		Config:     f.animatorConfig(cmd, cfg.Animator),
		Seed:       f.seed,
		DPR:        f.dpr,
		Background: f.background,
		NoGlow:     f.noGlow,
		NoTrail:    f.noTrail,
		Cols:       f.cols,
		Rows:       f.rows,
		Logger:     loggerFromContext(cmd.Context()),
	}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   renderFlags
		ticks   int
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "render SCENE",
		Short: "Render the frame a scene reaches after N ticks",
		Long: `Render simulates a scene (.toml or .html) for a number of ticks, replaying
the scene's cursor samples, and writes the final frame.

Simulation is seeded, so the same scene, config, tick count and seed always
produce the same frame; results are cached.`,
		Example: `  perimeter render site.toml
  perimeter render site.toml -f svg,png -o out/site --ticks 120
  perimeter render page.html -f txt --cols 120 --rows 40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := render.ParseFormats(flags.formats)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, args[0], cfg)
			opts.Ticks = ticks
			opts.Formats = formats
			opts.Refresh = refresh
			return c.runRender(cmd.Context(), cfg, opts, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (one format) or base path (several)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", render.FormatSVG, "output format(s): svg, png, txt (comma-separated)")
	cmd.Flags().IntVarP(&ticks, "ticks", "n", pipeline.DefaultTicks, "ticks to simulate")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached results")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "also copy the SVG or text output to the clipboard")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cfg config.Config, opts pipeline.Options, flags renderFlags) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(ctx, cfg.Cache, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Simulating %d ticks...", opts.Ticks))
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	paths := outputPaths(flags.output, opts.Scene, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}

	prog.done(fmt.Sprintf("Rendered %d format(s)", len(opts.Formats)))
	printSuccess("Rendered %s", filepath.Base(opts.Scene))
	printStats(result.Stats.Sections, result.Stats.Hinges, result.Stats.Ticks,
		result.CacheInfo.SimulateHit && result.CacheInfo.RenderHit)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	if flags.copy {
		copyOutput(logger, opts.Formats, result.Artifacts)
	}
	return nil
}

// outputPaths names one file per format. A single format writes to output
// as given; several formats use output as a base path. Without output,
// files are named after the scene.
func outputPaths(output, scene string, formats []string) map[string]string {
	base := output
	if base == "" {
		base = strings.TrimSuffix(scene, filepath.Ext(scene))
	}
	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		if len(formats) == 1 && output != "" {
			paths[f] = output
			continue
		}
		paths[f] = strings.TrimSuffix(base, "."+f) + "." + f
	}
	return paths
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
