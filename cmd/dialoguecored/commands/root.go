package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "dialoguecored",
	Short: "Dialogue-core websocket daemon",
	Long: `dialoguecored serves the device/app-facing websocket protocol that
binds a connection to a conversational role and runs its VAD -> STT ->
ChatEngine -> TTS pipeline for the life of the connection.

Configuration is a single YAML document (see config.Default for the
documented defaults); pass --config to point at a deployment's copy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (defaults to config.Default() if unset)")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool { return verbose }
