package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/geom"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	glow       bool
	trail      bool
	scrollTop  float64
	viewHeight float64
}

// WithBackground fills the canvas before drawing. The default is transparent,
// since the outline is layered behind page content.
func WithBackground(css string) SVGOption { return func(r *svgRenderer) { r.background = css } }

// WithoutGlow omits the blur filters.
func WithoutGlow() SVGOption { return func(r *svgRenderer) { r.glow = false } }

// WithoutTrail omits cursor trail particles.
func WithoutTrail() SVGOption { return func(r *svgRenderer) { r.trail = false } }

// WithScroll restricts the view to the visible window of a scrolled
// container. Scrolling only moves the window; geometry is unchanged.
func WithScroll(top, height float64) SVGOption {
	return func(r *svgRenderer) {
		r.scrollTop = max(0, top)
		r.viewHeight = height
	}
}

// RenderSVG draws a frame as a standalone SVG document.
func RenderSVG(f animator.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{glow: true, trail: true}
	for _, opt := range opts {
		opt(&r)
	}

	w := math.Ceil(f.Container.Width)
	h := math.Ceil(f.Container.Height)
	vh := h
	if r.viewHeight > 0 {
		vh = r.viewHeight
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(r.scrollTop), num(w), num(vh), w, vh)

	r.renderDefs(&buf, f)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n", num(w), num(h), r.background)
	}

	s := f.State
	cfg := f.Config
	pal := f.Palette
	for i, c := range s.Corners {
		buf.WriteString("  <g class=\"section\">\n")
		fmt.Fprintf(&buf, `    <polygon points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-linejoin="miter"%s/>`+"\n",
			points(SectionPath(c)), pal.Line.CSS(), num(cfg.LineWidth), r.filter("glow-section"))
		for _, n := range nodes(c) {
			r.renderNode(&buf, n, cfg.NodeRadius, fmt.Sprintf("node-%d", i), "glow-node", pal.Highlight, pal.Ring)
		}
		buf.WriteString("  </g>\n")
	}

	if path := PerimeterPath(s); len(path) > 0 {
		buf.WriteString("  <g class=\"perimeter\">\n")
		fmt.Fprintf(&buf, `    <polygon points="%s" fill="none" stroke="%s" stroke-width="%s"%s/>`+"\n",
			points(path), pal.Line.CSS(), num(cfg.LineWidth), r.filter("glow-perimeter"))
		for _, h := range s.Hinges {
			r.renderNode(&buf, h.Pos, cfg.NodeRadius, "node-outer", "glow-hinge", pal.Highlight, pal.HingeRing)
		}
		buf.WriteString("  </g>\n")
	}

	if r.trail && len(f.Trail) > 0 {
		buf.WriteString("  <g class=\"trail\">\n")
		for _, p := range f.Trail {
			c := p.Color
			c.A *= trailAlpha(p, f)
			fmt.Fprintf(&buf, `    <circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
				num(p.Pos.X), num(p.Pos.Y), num(p.Size/2), c.CSS())
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderDefs(buf *bytes.Buffer, f animator.Frame) {
	pal := f.Palette
	buf.WriteString("  <defs>\n")
	if r.glow {
		writeGlowFilter(buf, "glow-section", pal.SectionGlow, animator.SectionGlowBlur)
		writeGlowFilter(buf, "glow-node", pal.NodeGlow, animator.NodeGlowBlur)
		writeGlowFilter(buf, "glow-perimeter", pal.PerimeterGlow, animator.PerimeterGlowBlur)
		writeGlowFilter(buf, "glow-hinge", pal.HingeGlow, animator.HingeGlowBlur)
	}
	// node fills run from a box's top-left to its bottom-right
	for i, c := range f.State.Corners {
		writeGradient(buf, fmt.Sprintf("node-%d", i), c.TL, c.BR, pal)
	}
	if o := f.State.Outer; o != nil {
		writeGradient(buf, "node-outer", o.TopLeft(), o.BottomRight(), pal)
	}
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) filter(id string) string {
	if !r.glow {
		return ""
	}
	return fmt.Sprintf(` filter="url(#%s)"`, id)
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, p geom.Point, radius float64, gradient, glow string, highlight, ring animator.Color) {
	cx, cy := num(p.X), num(p.Y)
	fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="url(#%s)"%s/>`+"\n", cx, cy, num(radius), gradient, r.filter(glow))
	fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n", cx, cy, num(highlightRadius(radius)), highlight.CSS())
	fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="1"/>`+"\n",
		cx, cy, num(max(0, radius-0.5)), ring.CSS())
}

// highlightRadius is the radius of a node's white inner dot.
func highlightRadius(r float64) float64 { return max(2.5, r*0.33) }

// writeGlowFilter emits a drop shadow with zero offset. A canvas shadow blur
// of b corresponds to a Gaussian standard deviation of b/2.
func writeGlowFilter(buf *bytes.Buffer, id string, c animator.Color, blur float64) {
	r, g, b := c.Clamped().RGB255()
	fmt.Fprintf(buf, `    <filter id="%s" x="-50%%" y="-50%%" width="200%%" height="200%%">`+"\n", id)
	fmt.Fprintf(buf, `      <feDropShadow dx="0" dy="0" stdDeviation="%s" flood-color="rgb(%d,%d,%d)" flood-opacity="%s"/>`+"\n",
		num(blur/2), r, g, b, num(c.A))
	buf.WriteString("    </filter>\n")
}

func writeGradient(buf *bytes.Buffer, id string, from, to geom.Point, pal animator.Palette) {
	fmt.Fprintf(buf, `    <linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s">`+"\n",
		id, num(from.X), num(from.Y), num(to.X), num(to.Y))
	fmt.Fprintf(buf, `      <stop offset="0" stop-color="%s"/>`+"\n", pal.NodeA.CSS())
	fmt.Fprintf(buf, `      <stop offset="1" stop-color="%s"/>`+"\n", pal.NodeB.CSS())
	buf.WriteString("    </linearGradient>\n")
}

func points(pts []geom.Point) string {
	var sb strings.Builder
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(num(p.X))
		sb.WriteByte(',')
		sb.WriteString(num(p.Y))
	}
	return sb.String()
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
