package render

import (
	"bytes"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/geom"
)

// MaxPixels bounds the backing store of a PNG frame.
const MaxPixels = 64 << 20

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	background string
	glow       bool
	trail      bool
	dpr        float64
}

// WithPNGBackground fills the canvas before drawing.
func WithPNGBackground(css string) PNGOption { return func(r *pngRenderer) { r.background = css } }

// WithPNGGlow toggles the blurred shadow layers.
func WithPNGGlow(on bool) PNGOption { return func(r *pngRenderer) { r.glow = on } }

// WithPNGTrail toggles cursor trail particles.
func WithPNGTrail(on bool) PNGOption { return func(r *pngRenderer) { r.trail = on } }

// WithDPR overrides the container's device pixel ratio.
func WithDPR(dpr float64) PNGOption {
	return func(r *pngRenderer) {
		if dpr > 0 {
			r.dpr = dpr
		}
	}
}

// BackingSize returns the device-pixel size of a frame's canvas:
// floor(ceil(css) * dpr) on each axis.
func BackingSize(width, height, dpr float64) (int, int) {
	dpr = max(1, dpr)
	return int(math.Floor(math.Ceil(width) * dpr)), int(math.Floor(math.Ceil(height) * dpr))
}

// RenderPNG rasterizes a frame. The context is scaled by the device pixel
// ratio so all geometry is drawn in CSS pixels.
func RenderPNG(f animator.Frame, opts ...PNGOption) ([]byte, error) {
	img, err := RenderImage(f, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// RenderImage is RenderPNG without the encoding step.
func RenderImage(f animator.Frame, opts ...PNGOption) (image.Image, error) {
	r := pngRenderer{glow: true, trail: true, dpr: f.Container.DPR}
	for _, opt := range opts {
		opt(&r)
	}
	r.dpr = max(1, r.dpr)

	w, h := BackingSize(f.Container.Width, f.Container.Height, r.dpr)
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "container has no area (%dx%d px)", w, h)
	}
	if w*h > MaxPixels {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "canvas %dx%d exceeds %d pixels", w, h, MaxPixels)
	}

	dc := gg.NewContext(w, h)
	if r.background != "" {
		bg, err := animator.ParseColor(r.background)
		if err != nil {
			return nil, err
		}
		dc.SetColor(bg.NRGBA())
		dc.Clear()
	}

	s := f.State
	cfg := f.Config
	pal := f.Palette

	strokeSections := func(dc *gg.Context) {
		for _, c := range s.Corners {
			polygon(dc, SectionPath(c))
			dc.Stroke()
		}
	}
	sectionNodes := func(dc *gg.Context) {
		for _, c := range s.Corners {
			for _, n := range nodes(c) {
				dc.DrawCircle(n.X, n.Y, cfg.NodeRadius)
				dc.Fill()
			}
		}
	}
	perimeter := PerimeterPath(s)
	strokePerimeter := func(dc *gg.Context) {
		if len(perimeter) == 0 {
			return
		}
		polygon(dc, perimeter)
		dc.Stroke()
	}
	hingeNodes := func(dc *gg.Context) {
		for _, hg := range s.Hinges {
			dc.DrawCircle(hg.Pos.X, hg.Pos.Y, cfg.NodeRadius)
			dc.Fill()
		}
	}

	// sections
	r.shadow(dc, pal.SectionGlow, animator.SectionGlowBlur, cfg.LineWidth, strokeSections)
	dc.Scale(r.dpr, r.dpr)
	dc.SetLineWidth(cfg.LineWidth * r.dpr)
	dc.SetColor(pal.Line.NRGBA())
	strokeSections(dc)
	dc.Identity()

	r.shadow(dc, pal.NodeGlow, animator.NodeGlowBlur, cfg.LineWidth, sectionNodes)
	for _, c := range s.Corners {
		grad := r.gradient(c.TL, c.BR, pal)
		for _, n := range nodes(c) {
			r.node(dc, n, cfg.NodeRadius, grad, pal.Highlight, pal.Ring)
		}
	}

	// global perimeter
	if len(perimeter) > 0 {
		r.shadow(dc, pal.PerimeterGlow, animator.PerimeterGlowBlur, cfg.LineWidth, strokePerimeter)
		dc.Scale(r.dpr, r.dpr)
		dc.SetLineWidth(cfg.LineWidth * r.dpr)
		dc.SetColor(pal.Line.NRGBA())
		strokePerimeter(dc)
		dc.Identity()

		if len(s.Hinges) > 0 {
			r.shadow(dc, pal.HingeGlow, animator.HingeGlowBlur, cfg.LineWidth, hingeNodes)
			o := *s.Outer
			grad := r.gradient(o.TopLeft(), o.BottomRight(), pal)
			for _, hg := range s.Hinges {
				r.node(dc, hg.Pos, cfg.NodeRadius, grad, pal.Highlight, pal.HingeRing)
			}
		}
	}

	if r.trail {
		dc.Scale(r.dpr, r.dpr)
		for _, p := range f.Trail {
			c := p.Color
			c.A *= trailAlpha(p, f)
			dc.SetColor(c.NRGBA())
			dc.DrawCircle(p.Pos.X, p.Pos.Y, p.Size/2)
			dc.Fill()
		}
		dc.Identity()
	}

	return dc.Image(), nil
}

// shadow draws shapes in the glow color on a separate layer, blurs it and
// composites it under whatever is drawn next.
func (r *pngRenderer) shadow(dc *gg.Context, c animator.Color, blur, lineWidth float64, draw func(*gg.Context)) {
	if !r.glow || c.A <= 0 {
		return
	}
	layer := gg.NewContext(dc.Width(), dc.Height())
	layer.Scale(r.dpr, r.dpr)
	layer.SetLineWidth(lineWidth * r.dpr)
	layer.SetColor(c.NRGBA())
	draw(layer)

	blurred := imaging.Blur(layer.Image(), blur/2*r.dpr)
	dc.DrawImage(blurred, 0, 0)
}

// gradient builds the node fill from a box's top-left to its bottom-right.
// gg evaluates patterns in device space, so the endpoints are scaled here.
func (r *pngRenderer) gradient(from, to geom.Point, pal animator.Palette) gg.Gradient {
	g := gg.NewLinearGradient(from.X*r.dpr, from.Y*r.dpr, to.X*r.dpr, to.Y*r.dpr)
	g.AddColorStop(0, pal.NodeA.NRGBA())
	g.AddColorStop(1, pal.NodeB.NRGBA())
	return g
}

func (r *pngRenderer) node(dc *gg.Context, p geom.Point, radius float64, fill gg.Gradient, highlight, ring animator.Color) {
	dc.Push()
	defer dc.Pop()
	dc.Scale(r.dpr, r.dpr)

	dc.SetFillStyle(fill)
	dc.DrawCircle(p.X, p.Y, radius)
	dc.Fill()

	dc.SetColor(highlight.NRGBA())
	dc.DrawCircle(p.X, p.Y, highlightRadius(radius))
	dc.Fill()

	if radius > 0.5 {
		dc.SetColor(ring.NRGBA())
		dc.SetLineWidth(r.dpr)
		dc.DrawCircle(p.X, p.Y, radius-0.5)
		dc.Stroke()
	}
}

func polygon(dc *gg.Context, pts []geom.Point) {
	dc.NewSubPath()
	for i, p := range pts {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
			continue
		}
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
}
