package layout

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/matzehuels/perimeter/pkg/errors"
	"github.com/matzehuels/perimeter/pkg/geom"
)

// HTMLOptions controls how sections are discovered in an HTML document.
type HTMLOptions struct {
	// SectionClasses are the class tokens an element must carry to be
	// outlined. Default: "pane", "section".
	SectionClasses []string
	// ContainerClass marks the wrapper whose size becomes the container.
	// Default: "rects-wrap".
	ContainerClass string
}

// DefaultHTMLOptions matches the markup convention of the portfolio pages:
// <div class="rects-wrap"><section class="pane section">…</section></div>.
var DefaultHTMLOptions = HTMLOptions{
	SectionClasses: []string{"pane", "section"},
	ContainerClass: "rects-wrap",
}

// LoadHTML reads an HTML file and returns a static source for its sections.
func LoadHTML(path string, opts HTMLOptions) (*Static, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "document not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseHTML(f, opts)
}

// ParseHTML discovers sections in an HTML document.
//
// A section's rectangle comes from data-left, data-top, data-width and
// data-height attributes, falling back to px values in its inline style.
// Elements that carry the section classes but no usable geometry are
// skipped. The container is sized the same way from the element carrying
// ContainerClass (plus an optional data-dpr); missing dimensions are fitted
// to the sections.
func ParseHTML(r io.Reader, opts HTMLOptions) (*Static, error) {
	if len(opts.SectionClasses) == 0 {
		opts.SectionClasses = DefaultHTMLOptions.SectionClasses
	}
	if opts.ContainerClass == "" {
		opts.ContainerClass = DefaultHTMLOptions.ContainerClass
	}

	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse html")
	}

	nodes, err := htmlquery.QueryAll(doc, classXPath(opts.SectionClasses...))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "select sections")
	}

	var rects []geom.Rect
	for _, n := range nodes {
		if r, ok := nodeRect(n); ok {
			rects = append(rects, r)
		}
	}

	c := Container{DPR: DefaultDPR}
	if wrap, err := htmlquery.Query(doc, classXPath(opts.ContainerClass)); err == nil && wrap != nil {
		dims := nodeDims(wrap)
		if w := dims["width"]; finite(w) {
			c.Width = w
		}
		if h := dims["height"]; finite(h) {
			c.Height = h
		}
		if dpr, ok := attrFloat(wrap, "data-dpr"); ok && finite(dpr) && dpr > 0 {
			c.DPR = dpr
		}
	}
	if c.Width <= 0 {
		c.Width = fitWidth(rects, fitMargin)
	}
	if c.Height <= 0 {
		c.Height = fitHeight(rects, fitMargin)
	}

	return NewStatic(c, rects), nil
}

// classXPath builds an expression matching elements carrying every class.
func classXPath(classes ...string) string {
	conds := make([]string, len(classes))
	for i, c := range classes {
		conds[i] = fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", c)
	}
	return "//*[" + strings.Join(conds, " and ") + "]"
}

// nodeRect extracts a section rectangle. Width and height are required, and
// an element with any NaN or infinite value is skipped.
func nodeRect(n *html.Node) (geom.Rect, bool) {
	d := nodeDims(n)
	w, okW := d["width"]
	h, okH := d["height"]
	if !okW || !okH || w < 0 || h < 0 {
		return geom.Rect{}, false
	}
	if !finite(d["left"], d["top"], w, h) {
		return geom.Rect{}, false
	}
	return geom.Rect{X: d["left"], Y: d["top"], Width: w, Height: h}, true
}

// nodeDims collects left/top/width/height, preferring data-* attributes
// over inline style declarations.
func nodeDims(n *html.Node) map[string]float64 {
	dims := parseStyle(htmlquery.SelectAttr(n, "style"))
	for _, k := range []string{"left", "top", "width", "height"} {
		if v, ok := attrFloat(n, "data-"+k); ok {
			dims[k] = v
		}
	}
	return dims
}

func attrFloat(n *html.Node, name string) (float64, bool) {
	raw := strings.TrimSpace(htmlquery.SelectAttr(n, name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "px"), 64)
	return v, err == nil
}

// parseStyle reads px-valued geometry declarations from an inline style.
func parseStyle(style string) map[string]float64 {
	dims := make(map[string]float64)
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		switch k {
		case "left", "top", "width", "height":
		default:
			continue
		}
		v = strings.TrimSpace(v)
		if !strings.HasSuffix(v, "px") {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "px")), 64); err == nil {
			dims[k] = f
		}
	}
	return dims
}
