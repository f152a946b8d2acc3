package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/retro/internal/config"
	"github.com/dyluth/retro/internal/printer"
	"github.com/dyluth/retro/internal/session"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Run the session host",
	Long: `Run the server side of a retro session.

The host consumes client requests from the session's requests channel,
validates and persists ideas in Redis, and re-broadcasts committed
changes to every connected client. Exactly one host should run per
session.

Examples:
  # Host the session described by ./retro.yml
  retro host

  # Host with an explicit config file
  retro host --config team-a.yml`,
	RunE: runHost,
}

func init() {
	rootCmd.AddCommand(hostCmd)
}

func runHost(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	host, err := session.NewHost(cfg.RedisOptions(), cfg.Session)
	if err != nil {
		return err
	}
	defer host.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := host.Ping(ctx); err != nil {
		return printer.Error(
			"cannot reach Redis",
			"The session host needs a running Redis server to hold session state.",
			[]string{"Check redis.addr in " + configPath, "Start Redis:\n  docker run -p 6379:6379 redis:7-alpine"},
		)
	}

	printer.Success("hosting session %q (redis: %s)\n", cfg.Session, cfg.Redis.Addr)
	printer.Info("Press Ctrl+C to stop.\n")

	if err := host.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	printer.Info("\nSession host stopped.\n")
	return nil
}
