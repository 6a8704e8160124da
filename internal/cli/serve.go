package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/perimeter/pkg/config"
	"github.com/matzehuels/perimeter/pkg/layout"
	"github.com/matzehuels/perimeter/pkg/server"
	"github.com/matzehuels/perimeter/pkg/session"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags       renderFlags
		addr        string
		ttl         time.Duration
		maxSessions int
	)

	cmd := &cobra.Command{
		Use:   "serve SCENE",
		Short: "Serve live frames to many viewers over HTTP",
		Long: `Serve starts an HTTP frame server for one scene. Every viewer creates a
session with POST /sessions, reports pointer and viewport changes, and
fetches frames from /sessions/{id}/frame.svg or frame.png.

Settings come from flags, then PERIMETER_* environment variables (also read
from .env), then the [server] table of the config file.`,
		Example: `  perimeter serve site.toml
  PERIMETER_ADDR=:9000 perimeter serve site.toml --max-sessions 64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyServeFlags(cmd, &cfg, addr, ttl, maxSessions, flags.seed)
			cfg.Animator = flags.animatorConfig(cmd, cfg.Animator)
			if err := cfg.Validate(); err != nil {
				return err
			}

			src, _, err := layout.Load(args[0])
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			store := session.NewStore(cfg.Server.SessionTTL.Duration,
				session.WithMaxSessions(cfg.Server.MaxSessions),
				session.WithStoreLogger(logger))
			srv := server.New(src, cfg.Animator,
				server.WithStore(store),
				server.WithLogger(logger),
				server.WithSeed(cfg.Server.Seed),
				server.WithJanitorInterval(cfg.Server.JanitorInterval.Duration))

			container := src.Container()
			printInfo("Serving %s", args[0])
			printKeyValue("address", cfg.Server.Addr)
			printKeyValue("sections", itoa(len(src.Sections())))
			printKeyValue("container", ftoa(container.Width)+" × "+ftoa(container.Height))
			printKeyValue("session ttl", cfg.Server.SessionTTL.String())
			printNextStep("Create a session", "curl -X POST http://localhost"+portOf(cfg.Server.Addr)+"/sessions")

			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "idle time before a session expires")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 0, "maximum live sessions (0 keeps the config value)")

	return cmd
}

// applyServeFlags overrides server settings with flags that were set.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config, addr string, ttl time.Duration, maxSessions int, seed uint64) {
	changed := cmd.Flags().Changed
	if changed("addr") {
		cfg.Server.Addr = addr
	}
	if changed("ttl") {
		cfg.Server.SessionTTL = config.Duration{Duration: ttl}
	}
	if changed("max-sessions") {
		cfg.Server.MaxSessions = maxSessions
	}
	if changed("seed") {
		cfg.Server.Seed = seed
	}
}
