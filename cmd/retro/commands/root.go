package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// configPath is shared by every subcommand that needs retro.yml.
var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "retro",
	Short: "Retro - Real-time collaborative retrospectives",
	Long: `Retro is a real-time collaborative retrospective tool: participants
contribute, edit and group ideas in a shared session, with every change
broadcast live to all connected clients.

Retro provides an event-driven architecture with Redis-based session
state, enabling transparent, synchronized team retrospectives.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "retro.yml", "Path to the session config file")
}
