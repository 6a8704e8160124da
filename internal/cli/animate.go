package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/pipeline"
	"github.com/matzehuels/perimeter/pkg/render"
)

// animateCommand creates the animate command.
func (c *CLI) animateCommand() *cobra.Command {
	var (
		flags  renderFlags
		frames int
		every  int
	)

	cmd := &cobra.Command{
		Use:   "animate SCENE",
		Short: "Write a numbered frame sequence",
		Long: `Animate simulates a scene and writes every K-th frame into a directory as
frame_0001.svg, frame_0002.svg, ... for stitching into a video or GIF.`,
		Example: `  perimeter animate site.toml -o frames/
  perimeter animate site.toml -o frames/ -f png --frames 120 --every 2 --trail`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.output == "" {
				return errors.New(errors.ErrCodeInvalidInput, "an output directory is required (-o)")
			}
			formats, err := render.ParseFormats(flags.formats)
			if err != nil {
				return err
			}
			if len(formats) != 1 {
				return errors.New(errors.ErrCodeInvalidFormat, "animate writes one format at a time")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg.Cache, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := pipeline.AnimateOptions{
				Options: flags.options(cmd, args[0], cfg),
				Frames:  frames,
				Every:   every,
				Format:  formats[0],
			}

			prog := newProgress(loggerFromContext(ctx))
			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Animating %d frames...", frames))
			spinner.Start()
			seq, err := runner.Animate(ctx, opts)
			spinner.Stop()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(flags.output, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			for i, data := range seq.Frames {
				path := filepath.Join(flags.output, frameName(i, seq.Format))
				if err := writeOutput(path, data); err != nil {
					return err
				}
			}

			prog.done(fmt.Sprintf("Wrote %d frames", len(seq.Frames)))
			printSuccess("Animated %s", filepath.Base(args[0]))
			printStats(seq.Stats.Sections, seq.Stats.Hinges, seq.Stats.Ticks, seq.Hits == len(seq.Frames))
			printKeyValue("frames", fmt.Sprintf("%d × %s", len(seq.Frames), seq.Interval))
			printFile(flags.output)
			if seq.Format == render.FormatPNG {
				printNextStep("Stitch into a video",
					fmt.Sprintf("ffmpeg -framerate %.0f -i %s %s",
						1/seq.Interval.Seconds(), filepath.Join(flags.output, "frame_%04d.png"), "perimeter.mp4"))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", render.FormatSVG, "frame format: svg, png or txt")
	cmd.Flags().IntVar(&frames, "frames", pipeline.DefaultFrames, "number of frames to write")
	cmd.Flags().IntVar(&every, "every", pipeline.DefaultEvery, "ticks between frames")

	return cmd
}

// frameName returns the one-based, zero-padded file name of frame i.
func frameName(i int, format string) string {
	return fmt.Sprintf("frame_%04d.%s", i+1, format)
}
