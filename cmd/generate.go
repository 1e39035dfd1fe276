package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/karolswdev/codeprompt/internal/config"
	"github.com/karolswdev/codeprompt/internal/llm"
	"github.com/karolswdev/codeprompt/internal/prompt"
)

const defaultGenerateTimeout = 60 * time.Second

// generateOutput is the JSON shape of 'cprompt generate -o json'.
type generateOutput struct {
	Prompt     string         `json:"prompt"`
	Completion llm.Completion `json:"completion"`
}

// generateCmdRunner holds the dependencies for the generate command.
type generateCmdRunner struct {
	configProvider ConfigProvider
	newLLM         LLMFactory
}

// Run builds the prompt, sends it to the configured model and prints the reply.
func (r *generateCmdRunner) Run(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	inputs, err := resolvePromptInputs(r.configProvider, cmd, args)
	if err != nil {
		return err
	}
	codePrompt := prompt.BuildWithOptions(inputs.request)

	// The client is created after the prompt so input errors surface before key errors.

	client, err := r.newLLM(r.configProvider, inputs.appConfig)
	if err != nil {
		Log.Error().Err(err).Msg("Failed to initialize LLM client")
		switch {
		case errors.Is(err, config.ErrAPIKeyNotFound):
			fmt.Fprintln(cmd.ErrOrStderr(), "Error: LLM API key not found.")
			fmt.Fprintf(cmd.ErrOrStderr(), "Please store it using 'cprompt config set-key <your-key>' or set the %s environment variable.\n", config.EnvAPIKeyName)
		case errors.Is(err, config.ErrKeyringGet):
			// No usable keychain (headless host, container) and no env var.
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: the OS keychain could not be read: %v\n", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Set the %s environment variable instead.\n", config.EnvAPIKeyName)
		case errors.Is(err, errUnsupportedProvider):
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v. Check llm.provider in config.yaml ('cprompt config show').\n", err)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: LLM client could not be initialized: %v\n", err)
		}
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	// cmd.Context() is nil when the command is run outside Execute (tests).
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	Log.Debug().Dur("timeout", timeout).Msg("Calling LLM client to generate code...")
	completion, err := client.GenerateCode(ctx, codePrompt)
	if err != nil {
		Log.Error().Err(err).Msg("LLM client GenerateCode failed")
		// Check the deadline first: it arrives wrapped in ErrLLMCompletion.
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			fmt.Fprintf(cmd.ErrOrStderr(), "The LLM did not answer within %s. Try a larger --timeout.\n", timeout)
		case errors.Is(err, llm.ErrLLMCompletion):
			fmt.Fprintf(cmd.ErrOrStderr(), "Error communicating with the LLM API: %v\n", err)
			fmt.Fprintln(cmd.ErrOrStderr(), "Please check your network connection and API key/endpoint configuration.")
		case errors.Is(err, llm.ErrLLMEmptyResponse), errors.Is(err, llm.ErrLLMEmptyCode):
			fmt.Fprintf(cmd.ErrOrStderr(), "The LLM returned no usable code: %v\n", err)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "An unexpected error occurred during LLM processing: %v\n", err)
		}
		return err
	}
	Log.Info().Str("model", completion.Model).Int("total_tokens", completion.TotalTokens).Msg("LLM processing successful.")

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, generateOutput{Prompt: codePrompt, Completion: completion})
	}

	// Text mode: extracted code by default, the full reply with --raw.
	raw, _ := cmd.Flags().GetBool("raw")
	if raw {
		_, err = fmt.Fprintln(out, completion.Raw)
		return err
	}
	_, err = fmt.Fprintln(out, completion.Code.Code)
	return err
}

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [task description...]",
	Short: "Build a prompt and send it to the configured LLM",
	Long: `Builds the same prompt as 'cprompt build', sends it to the model configured
in config.yaml and prints the code from the reply.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		runner := &generateCmdRunner{configProvider: provider.Config, newLLM: provider.NewLLM}
		return runner.Run(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addPromptFlags(generateCmd)
	generateCmd.Flags().Bool("raw", false, "Print the full model reply instead of the extracted code")
	generateCmd.Flags().Duration("timeout", defaultGenerateTimeout, "Maximum time to wait for the model")
}
