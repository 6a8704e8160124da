// Package config loads perimeter settings.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML
// file, a .env file, process environment variables, and command-line flags
// (applied by the CLI). The file has one table per concern:
//
//	[animator]
//	outline_offset = 18
//	fps = 30
//	theme = "dark"
//
//	[server]
//	addr = ":8080"
//	session_ttl = "10m"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/perimeter/pkg/animator"
	"github.com/matzehuels/perimeter/pkg/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvAddr     = "PERIMETER_ADDR"
	EnvRedisURL = "PERIMETER_REDIS_URL"
	EnvCacheDir = "PERIMETER_CACHE_DIR"
	EnvTheme    = "PERIMETER_THEME"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Duration is a time.Duration written as "90s" or "10m" in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Config is the complete settings tree.
type Config struct {
	Animator animator.Config `toml:"animator"`
	Server   ServerConfig    `toml:"server"`
	Cache    CacheConfig     `toml:"cache"`
}

// ServerConfig configures the frame server.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	SessionTTL      Duration `toml:"session_ttl"`      // idle time before a viewer session expires
	JanitorInterval Duration `toml:"janitor_interval"` // how often expired sessions are swept
	MaxSessions     int      `toml:"max_sessions"`
	Seed            uint64   `toml:"seed"` // base seed for per-session jitter; 0 means random
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"` // file backend root; empty means the user cache dir
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Animator: animator.DefaultConfig(),
		Server: ServerConfig{
			Addr:            ":8080",
			SessionTTL:      Duration{10 * time.Minute},
			JanitorInterval: Duration{time.Minute},
			MaxSessions:     256,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Prefix:  "perimeter:",
			TTL:     Duration{7 * 24 * time.Hour},
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults. Unknown keys are rejected so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped; with no arguments it tries ./.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", p)
		}
	}
	return nil
}

// ApplyEnv overrides settings from environment variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = BackendRedis
	}
	if v, ok := lookup(EnvCacheDir); ok && v != "" {
		c.Cache.Dir = v
	}
	if v, ok := lookup(EnvTheme); ok && v != "" {
		c.Animator.Theme = v
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Animator.Validate(); err != nil {
		return err
	}
	if c.Server.SessionTTL.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}
	if c.Server.JanitorInterval.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.janitor_interval must be positive")
	}
	if c.Server.MaxSessions < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_sessions must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"cache.backend must be %s, %s or %s, got %q", BackendFile, BackendRedis, BackendNone, c.Cache.Backend)
	}
	return nil
}

// String renders the configuration as TOML, for `perimeter config`.
func (c Config) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("# encode error: %v\n", err)
	}
	return sb.String()
}
