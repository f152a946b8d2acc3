package commands

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/retro/internal/config"
	"github.com/dyluth/retro/internal/printer"
	"github.com/dyluth/retro/pkg/channel"
	"github.com/dyluth/retro/pkg/retro"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream session activity",
	Long: `Subscribe to the session and print every broadcast event as it
happens: committed ideas, live-edit previews, edits and deletions.

Examples:
  # Watch the session described by ./retro.yml
  retro watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	client, err := channel.NewClient(cfg.RedisOptions(), cfg.Session, cfg.PushTimeoutDuration())
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Ping(ctx); err != nil {
		return printer.Error(
			"cannot reach Redis",
			"Watching a session needs a running Redis server.",
			[]string{"Check redis.addr in " + configPath},
		)
	}

	client.On(retro.EventIdeaCommitted, func(payload json.RawMessage) {
		var idea retro.Idea
		if err := json.Unmarshal(payload, &idea); err != nil {
			return
		}
		printer.Event("idea committed", "#%d %q (user %d)\n", idea.ID, idea.Body, idea.UserID)
	})

	client.On(retro.EventIdeaLiveEdit, func(payload json.RawMessage) {
		var edit retro.LiveEditPayload
		if err := json.Unmarshal(payload, &edit); err != nil {
			return
		}
		printer.Event("live edit", "#%d %q\n", edit.ID, edit.LiveEditText)
	})

	client.On(retro.EventIdeaEdited, func(payload json.RawMessage) {
		var edit retro.EditPayload
		if err := json.Unmarshal(payload, &edit); err != nil {
			return
		}
		printer.Event("idea edited", "#%d %q\n", edit.ID, edit.Body)
	})

	client.On(retro.EventIdeaEditStateDisabled, func(payload json.RawMessage) {
		var cancelled retro.EditStateDisabledPayload
		if err := json.Unmarshal(payload, &cancelled); err != nil {
			return
		}
		printer.Event("edit cancelled", "#%d\n", cancelled.ID)
	})

	client.On(retro.EventIdeaDeletionCommitted, func(payload json.RawMessage) {
		var deleted retro.EditStateDisabledPayload
		if err := json.Unmarshal(payload, &deleted); err != nil {
			return
		}
		printer.Event("idea deleted", "#%d\n", deleted.ID)
	})

	printer.Info("Watching session %q. Press Ctrl+C to stop.\n", cfg.Session)
	<-ctx.Done()

	printer.Info("\nStopped watching.\n")
	return nil
}
