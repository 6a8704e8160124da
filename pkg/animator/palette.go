package animator

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/perimeter/pkg/errors"
)

// Palette presets.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Color is an sRGB color with straight (non-premultiplied) alpha.
type Color struct {
	colorful.Color
	A float64
}

// ParseColor accepts #rgb, #rrggbb, rgb(r,g,b) and rgba(r,g,b,a).
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid color %q", s)
		}
		return Color{Color: c, A: 1}, nil
	}

	fn, args, ok := strings.Cut(s, "(")
	if !ok || !strings.HasSuffix(args, ")") || (fn != "rgb" && fn != "rgba") {
		return Color{}, errors.New(errors.ErrCodeInvalidConfig, "invalid color %q", s)
	}
	parts := strings.Split(strings.TrimSuffix(args, ")"), ",")
	if (fn == "rgb" && len(parts) != 3) || (fn == "rgba" && len(parts) != 4) {
		return Color{}, errors.New(errors.ErrCodeInvalidConfig, "invalid color %q", s)
	}

	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Color{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid color %q", s)
		}
		vals[i] = v
	}
	c := Color{
		Color: colorful.Color{R: clamp01(vals[0] / 255), G: clamp01(vals[1] / 255), B: clamp01(vals[2] / 255)},
		A:     1,
	}
	if len(vals) == 4 {
		c.A = clamp01(vals[3])
	}
	return c, nil
}

// MustParseColor is ParseColor for package-level literals.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// NRGBA converts to the image/color representation.
func (c Color) NRGBA() color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(c.A) * 255))}
}

// CSS formats the color as rgba() for SVG attributes.
func (c Color) CSS() string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(clamp01(c.A), 'f', -1, 64))
}

// Blend interpolates toward o in Lab space, t in [0,1].
func (c Color) Blend(o Color, t float64) Color {
	t = clamp01(t)
	return Color{Color: c.Color.BlendLab(o.Color, t).Clamped(), A: c.A + (o.A-c.A)*t}
}

func clamp01(v float64) float64 { return max(0, min(1, v)) }

// Palette is the resolved set of colors a renderer needs.
type Palette struct {
	Line  Color // section and perimeter strokes
	NodeA Color // node gradient start (box top-left)
	NodeB Color // node gradient end (box bottom-right)

	SectionGlow   Color // shadow behind section strokes
	PerimeterGlow Color // shadow behind the global perimeter
	NodeGlow      Color // shadow behind section nodes
	HingeGlow     Color // shadow behind perimeter hinges
	Highlight     Color // node inner dot
	Ring          Color // section node outline ring
	HingeRing     Color // hinge outline ring

	Trail []Color // particle colors
}

// Glow blur radii in CSS pixels.
const (
	SectionGlowBlur   = 22
	PerimeterGlowBlur = 26
	NodeGlowBlur      = 24
	HingeGlowBlur     = 26
)

var presets = map[string]Palette{
	ThemeDark: {
		Line:          MustParseColor("rgba(135,206,250,0.75)"),
		NodeA:         MustParseColor("#60a5fa"),
		NodeB:         MustParseColor("#a78bfa"),
		SectionGlow:   MustParseColor("rgba(135,206,250,0.85)"),
		PerimeterGlow: MustParseColor("rgba(135,206,250,0.95)"),
		NodeGlow:      MustParseColor("rgba(99,102,241,0.85)"),
		HingeGlow:     MustParseColor("rgba(99,102,241,0.95)"),
		Highlight:     MustParseColor("rgba(255,255,255,0.95)"),
		Ring:          MustParseColor("rgba(190,210,255,0.45)"),
		HingeRing:     MustParseColor("rgba(190,210,255,0.5)"),
		Trail:         pastel,
	},
	ThemeLight: {
		Line:          MustParseColor("rgba(37,99,235,0.7)"),
		NodeA:         MustParseColor("#2563eb"),
		NodeB:         MustParseColor("#7c3aed"),
		SectionGlow:   MustParseColor("rgba(59,130,246,0.35)"),
		PerimeterGlow: MustParseColor("rgba(59,130,246,0.45)"),
		NodeGlow:      MustParseColor("rgba(79,70,229,0.4)"),
		HingeGlow:     MustParseColor("rgba(79,70,229,0.5)"),
		Highlight:     MustParseColor("rgba(255,255,255,0.95)"),
		Ring:          MustParseColor("rgba(30,41,59,0.35)"),
		HingeRing:     MustParseColor("rgba(30,41,59,0.4)"),
		Trail:         pastel,
	},
}

var pastel = []Color{
	MustParseColor("#a0d9b4"), // green
	MustParseColor("#7cb9e8"), // blue
	MustParseColor("#b5d8f7"), // light blue
	MustParseColor("#f2a7b3"), // pink
	MustParseColor("#d8b5f7"), // purple
	MustParseColor("#f7e6b5"), // yellow
}

// Palette resolves the theme preset and applies explicit color overrides.
func (c Config) Palette() (Palette, error) {
	theme := c.Theme
	if theme == "" {
		theme = ThemeDark
	}
	p, ok := presets[theme]
	if !ok {
		return Palette{}, errors.New(errors.ErrCodeInvalidConfig, "unknown theme %q (must be dark or light)", theme)
	}
	overrides := []struct {
		raw string
		dst *Color
	}{
		{c.LineColor, &p.Line},
		{c.NodeColorA, &p.NodeA},
		{c.NodeColorB, &p.NodeB},
	}
	for _, o := range overrides {
		if o.raw == "" {
			continue
		}
		col, err := ParseColor(o.raw)
		if err != nil {
			return Palette{}, err
		}
		*o.dst = col
	}
	return p, nil
}
