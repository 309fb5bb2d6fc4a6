package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parley-cli",
	Short: "Parley CLI tool",
	Long: `Parley CLI inspects the message action catalogue and the services a
Parley server wires together.

Available commands:
  actions          List registered message actions or check which are visible
  topics           List the events published on the message bus
  list-services    Discover the services shared through the registry
  version          Print the CLI version

Use "parley-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
