package cmd

import (
	"github.com/spf13/cobra"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage codeprompt configuration",
	Long: `Provides commands to initialize, show, and locate codeprompt configuration files
and to store the LLM API key. This command itself does not perform any action.`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
