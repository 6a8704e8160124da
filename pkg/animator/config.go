package animator

import (
	"github.com/matzehuels/perimeter/pkg/errors"
)

// Damping is the per-tick velocity retention of hinge nodes.
const Damping = 0.96

// HingeRadiusScale widens the hover radius for hinge repulsion.
const HingeRadiusScale = 1.15

// MaxExtrasPerSide is the largest supported hinge count per edge.
const MaxExtrasPerSide = 2

// Config holds every tuning knob of the animation. Lengths are CSS pixels.
type Config struct {
	OutlineOffset float64 `toml:"outline_offset" json:"outline_offset"` // outward expansion of each section rect
	NodeRadius    float64 `toml:"node_radius" json:"node_radius"`
	LineWidth     float64 `toml:"line_width" json:"line_width"`

	Theme      string `toml:"theme" json:"theme,omitempty"` // palette preset: dark (default) or light
	LineColor  string `toml:"line_color" json:"line_color,omitempty"`
	NodeColorA string `toml:"node_color_a" json:"node_color_a,omitempty"`
	NodeColorB string `toml:"node_color_b" json:"node_color_b,omitempty"`

	HoverMaxOffset float64 `toml:"hover_max_offset" json:"hover_max_offset"` // corner repulsion at distance zero
	HoverRadius    float64 `toml:"hover_radius" json:"hover_radius"`
	MaxOutward     float64 `toml:"max_outward" json:"max_outward"` // corner outward cap
	Ease           float64 `toml:"ease" json:"ease"`               // fraction of remaining distance covered per tick
	FPS            float64 `toml:"fps" json:"fps"`

	PerimeterExtrasPerSide   int     `toml:"perimeter_extras_per_side" json:"perimeter_extras_per_side"`
	PerimeterOutwardCap      float64 `toml:"perimeter_outward_cap" json:"perimeter_outward_cap"`
	PerimeterDriftTangential float64 `toml:"perimeter_drift_tangential" json:"perimeter_drift_tangential"`
	PerimeterDriftNormal     float64 `toml:"perimeter_drift_normal" json:"perimeter_drift_normal"`
	PerimeterMouseFactor     float64 `toml:"perimeter_mouse_factor" json:"perimeter_mouse_factor"`

	Trail         bool `toml:"trail" json:"trail,omitempty"`                   // spawn cursor trail particles
	ReducedMotion bool `toml:"reduced_motion" json:"reduced_motion,omitempty"` // freeze drift and cursor response
}

// DefaultConfig returns the stock tuning of the portfolio site.
func DefaultConfig() Config {
	return Config{
		OutlineOffset:            18,
		NodeRadius:               11,
		LineWidth:                2,
		Theme:                    ThemeDark,
		HoverMaxOffset:           12,
		HoverRadius:              180,
		MaxOutward:               22,
		Ease:                     0.12,
		FPS:                      30,
		PerimeterExtrasPerSide:   2,
		PerimeterOutwardCap:      24,
		PerimeterDriftTangential: 0.06,
		PerimeterDriftNormal:     0.02,
		PerimeterMouseFactor:     0.08,
	}
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{"outline_offset", c.OutlineOffset},
		{"node_radius", c.NodeRadius},
		{"line_width", c.LineWidth},
		{"hover_max_offset", c.HoverMaxOffset},
		{"hover_radius", c.HoverRadius},
		{"max_outward", c.MaxOutward},
		{"perimeter_outward_cap", c.PerimeterOutwardCap},
		{"perimeter_drift_tangential", c.PerimeterDriftTangential},
		{"perimeter_drift_normal", c.PerimeterDriftNormal},
		{"perimeter_mouse_factor", c.PerimeterMouseFactor},
	}
	for _, chk := range checks {
		if err := errors.ValidateNonNegative(chk.field, chk.v); err != nil {
			return err
		}
	}
	if err := errors.ValidatePositive("fps", c.FPS); err != nil {
		return err
	}
	if err := errors.ValidatePositive("ease", c.Ease); err != nil {
		return err
	}
	if err := errors.ValidateRange("ease", c.Ease, 0, 1); err != nil {
		return err
	}
	if c.PerimeterExtrasPerSide < 0 || c.PerimeterExtrasPerSide > MaxExtrasPerSide {
		return errors.New(errors.ErrCodeInvalidConfig,
			"perimeter_extras_per_side must be in [0, %d], got %d", MaxExtrasPerSide, c.PerimeterExtrasPerSide)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	return nil
}
