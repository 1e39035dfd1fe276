package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karolswdev/codeprompt/internal/prompt"
)

// exampleCmd prints the prompt for a fixed sample module. It needs no configuration.
var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print a sample prompt",
	Long: `Prints the prompt built for a small pandas module, asking for an
aggregate_by_category function. Useful to see the prompt layout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Log.Debug().Msg("Executing example command")
		_, err := fmt.Fprintln(cmd.OutOrStdout(), prompt.Example())
		return err
	},
}

func init() {
	rootCmd.AddCommand(exampleCmd)
}
