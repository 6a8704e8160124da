package animator

import (
	"testing"

	"github.com/matzehuels/perimeter/pkg/errors"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative offset", func(c *Config) { c.OutlineOffset = -1 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"zero ease", func(c *Config) { c.Ease = 0 }},
		{"ease above one", func(c *Config) { c.Ease = 1.5 }},
		{"too many extras", func(c *Config) { c.PerimeterExtrasPerSide = 3 }},
		{"negative extras", func(c *Config) { c.PerimeterExtrasPerSide = -1 }},
		{"bad color", func(c *Config) { c.NodeColorA = "nope" }},
		{"negative radius", func(c *Config) { c.HoverRadius = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
