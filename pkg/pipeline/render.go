package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/cache"
	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/observability"
	"github.com/matzehuels/perimeter/pkg/render"
)

// RenderWithCacheInfo encodes the simulated frame in every requested format.
// Formats are encoded concurrently. The hit flag is true only when every
// format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, sim *Simulation, opts Options) (map[string][]byte, bool, error) {
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
		allHit    = true
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, hit, err := r.renderFormat(gctx, sim.Frame, sim.StateHash, format, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			artifacts[format] = data
			allHit = allHit && hit
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return artifacts, allHit, nil
}

// renderFormat encodes one frame in one format through the artifact cache.
func (r *Runner) renderFormat(ctx context.Context, f animator.Frame, stateHash, format string, opts Options) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(stateHash, opts.ArtifactKeyOpts(format))
	if data, ok := r.get(ctx, key, keyTypeArtifact, opts.Refresh); ok {
		return data, true, nil
	}

	data, err := Encode(f, format, opts)
	if err != nil {
		return nil, false, err
	}
	r.set(ctx, key, keyTypeArtifact, data, cache.ArtifactTTL)
	opts.Logger.Debug("rendered", "format", format, "bytes", len(data))
	return data, false, nil
}

// Encode renders a frame in one format with the options' render settings.
// Terminal text is written without color codes.
func Encode(f animator.Frame, format string, opts Options) ([]byte, error) {
	switch format {
	case render.FormatSVG:
		var svgOpts []render.SVGOption
		if opts.Background != "" {
			svgOpts = append(svgOpts, render.WithBackground(opts.Background))
		}
		if opts.NoGlow {
			svgOpts = append(svgOpts, render.WithoutGlow())
		}
		if opts.NoTrail {
			svgOpts = append(svgOpts, render.WithoutTrail())
		}
		return render.RenderSVG(f, svgOpts...), nil
	case render.FormatPNG:
		return render.RenderPNG(f,
			render.WithPNGBackground(opts.Background),
			render.WithPNGGlow(!opts.NoGlow),
			render.WithPNGTrail(!opts.NoTrail),
			render.WithDPR(opts.DPR))
	case render.FormatText:
		cols, rows := opts.Cols, opts.Rows
		if cols <= 0 {
			cols = DefaultCols
		}
		if rows <= 0 {
			rows = DefaultRows
		}
		return []byte(render.RenderText(f, cols, rows,
			render.WithPlainText(),
			render.WithTextTrail(!opts.NoTrail))), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format %q", format)
	}
}
