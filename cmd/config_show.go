package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karolswdev/codeprompt/internal/config"
	"github.com/karolswdev/codeprompt/internal/prompt"
)

// configShowCmd represents the show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current codeprompt configuration",
	Long: `Displays the currently loaded configuration values
from config files and environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to get service provider: %w", err)
		}
		return configShowRunE(provider.Config, provider.Keyring, cmd.OutOrStdout())
	},
}

// configShowRunE contains the core logic for the 'config show' command.
func configShowRunE(cfgProvider ConfigProvider, keyringClient KeyringClient, writer io.Writer) error {
	cfg, err := cfgProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	profiles, err := cfgProvider.LoadProfiles()
	if err != nil {
		return fmt.Errorf("error loading profiles: %w", err)
	}

	fmt.Fprintln(writer, "Current codeprompt Configuration:")
	fmt.Fprintf(writer, "  Context Lines:  %d\n", cfg.ContextLines)
	fmt.Fprintf(writer, "  Profile:        %s\n", cfg.Profile)
	fmt.Fprintf(writer, "  Profiles:       %s\n", profileNames(profiles.Profiles))
	fmt.Fprintf(writer, "  LLM Provider:   %s\n", cfg.LLM.Provider)
	// Provider specific settings
	switch cfg.LLM.Provider {
	case "openai":
		fmt.Fprintf(writer, "    OpenAI Model: %s\n", cfg.LLM.OpenAI.ModelName)
		if cfg.LLM.OpenAI.BaseURL != "" {
			fmt.Fprintf(writer, "    OpenAI BaseURL: %s\n", cfg.LLM.OpenAI.BaseURL)
		}
	default:
		fmt.Fprintf(writer, "    (No specific settings shown for provider '%s')\n", cfg.LLM.Provider)
	}
	// Zero means the provider's limit, nothing to show.
	if cfg.LLM.MaxTokens > 0 {
		fmt.Fprintf(writer, "    Max Tokens:   %d\n", cfg.LLM.MaxTokens)
	}
	fmt.Fprintf(writer, "    Temperature:  %.2f\n", cfg.LLM.Temperature)

	// Report whether a key exists, never the key itself.
	_, err = keyringClient.GetAPIKey(config.KeyringServiceName, config.KeyringUserName)
	apiKeyStatus := "Set (use 'cprompt config set-key' to change)"
	if err != nil {
		if errors.Is(err, config.ErrAPIKeyNotFound) {
			apiKeyStatus = "Not Set (use 'cprompt config set-key' to set)"
		} else {
			apiKeyStatus = fmt.Sprintf("Status Unknown (error checking keychain/env: %v)", err)
		}
	}
	fmt.Fprintf(writer, "  LLM API Key:    %s\n", apiKeyStatus)

	return nil
}

// profileNames lists built-in profile names followed by user profiles not shadowing them.
func profileNames(userProfiles []prompt.Profile) string {
	builtin := prompt.BuiltinProfiles()
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)

	// Built-ins first in a stable order, then user profiles in file order.
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, p := range userProfiles {
		if !seen[p.Name] {
			names = append(names, p.Name)
			seen[p.Name] = true
		}
	}

	return strings.Join(names, ", ")
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
