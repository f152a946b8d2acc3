package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dyluth/retro/internal/printer"
	"github.com/dyluth/retro/pkg/retro"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the session's ideas",
	Long: `Fetch the full session snapshot from the host and print every idea
in insertion order.

Use --json for machine-readable output.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, client, err := sessionClient()
	if err != nil {
		return err
	}
	defer client.Close()

	store := retro.NewStore()
	push := retro.RequestState(store, client)
	if err := awaitPush(push, "state request"); err != nil {
		return err
	}

	ideas := store.Ideas()

	if listJSON {
		out, err := json.MarshalIndent(ideas, "", "  ")
		if err != nil {
			return err
		}
		printer.Println(string(out))
		return nil
	}

	if len(ideas) == 0 {
		printer.Info("No ideas in session %q yet.\n", cfg.Session)
		return nil
	}

	printer.Info("Ideas in session %q:\n", cfg.Session)
	for _, idea := range ideas {
		line := ""
		if idea.Category != "" {
			line = " [" + idea.Category + "]"
		}
		printer.Printf("  #%d%s %s (user %d)\n", idea.ID, line, idea.Body, idea.UserID)
	}
	return nil
}
