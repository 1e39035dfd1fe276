package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karolswdev/codeprompt/internal/config"
	"github.com/karolswdev/codeprompt/internal/prompt"
)

// promptInputs is everything a prompt command needs after flags and config are resolved.
type promptInputs struct {
	appConfig *config.AppConfig
	request   prompt.Request
}

// addPromptFlags registers the flags shared by build and generate.
func addPromptFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Source file to use as context ('-' reads stdin)")
	cmd.Flags().StringP("task", "t", "", "Task description (defaults to the positional arguments)")
	cmd.Flags().StringP("function", "n", "", "Name of the function to implement")
	// Zero keeps pflag from printing a "(default N)" that config.yaml may contradict;
	// the value is only read when the flag was given.
	cmd.Flags().IntP("context-lines", "c", 0, fmt.Sprintf("Lines of context kept on each side of the matched line (default: context_lines from config.yaml, else %d)", prompt.DefaultContextLines))
	cmd.Flags().StringP("profile", "p", "", "Prompt profile (default from config.yaml)")
}

// resolvePromptInputs loads config, profiles and the source file, and merges them with flags.
// Flags win over config.yaml values.
func resolvePromptInputs(cp ConfigProvider, cmd *cobra.Command, args []string) (*promptInputs, error) {
	appCfg, err := cp.LoadConfig()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load main configuration file (config.yaml)")
		switch {
		case errors.Is(err, config.ErrConfigRead), errors.Is(err, config.ErrConfigParse):
			fmt.Fprintln(cmd.ErrOrStderr(), "Error reading or parsing config.yaml. Please check its format and permissions.")
		case errors.Is(err, config.ErrConfigDirCreate), errors.Is(err, config.ErrConfigDirStat), errors.Is(err, config.ErrConfigDirNotDir):
			fmt.Fprintln(cmd.ErrOrStderr(), "Error accessing configuration directory. Please check permissions.")
		default:
			fmt.Fprintln(cmd.ErrOrStderr(), "An unexpected error occurred loading config.yaml.")
		}
		return nil, err
	}

	// Empty path means no source; "-" reads stdin.
	sourcePath, _ := cmd.Flags().GetString("file")
	source, err := cp.LoadSource(sourcePath, cmd.InOrStdin())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error reading source file %q.\n", sourcePath)
		return nil, err
	}

	// --task wins; otherwise the positional args form the task.
	task, _ := cmd.Flags().GetString("task")
	if task == "" {
		task = strings.Join(args, " ")
	}
	if task == "" {
		Log.Warn().Msg("No task description given; the prompt will have an empty task")
	}

	functionName, _ := cmd.Flags().GetString("function")

	// Flags override config.yaml only when given explicitly.
	contextLines := appCfg.ContextLines
	if cmd.Flags().Changed("context-lines") {
		contextLines, _ = cmd.Flags().GetInt("context-lines")
	}
	if contextLines < 0 {
		// prompt.Extract clamps, this only tells the user.
		Log.Warn().Int("context_lines", contextLines).Msg("Negative context lines treated as zero")
	}

	profileName := appCfg.Profile
	if cmd.Flags().Changed("profile") {
		profileName, _ = cmd.Flags().GetString("profile")
	}
	profiles, err := cp.LoadProfiles()
	if err != nil {
		Log.Error().Err(err).Msg("Failed to load profiles file (profiles.yaml)")
		fmt.Fprintln(cmd.ErrOrStderr(), "Error reading or parsing profiles.yaml. Please check its format.")
		return nil, err
	}
	// User profiles shadow built-ins of the same name.
	profile, err := prompt.LookupProfile(profileName, profiles.Profiles)
	if err != nil {
		Log.Error().Err(err).Str("profile", profileName).Msg("Profile lookup failed")
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown profile %q. Define it in profiles.yaml or use one of: default, python, go.\n", profileName)
		return nil, err
	}

	Log.Debug().
		Str("file", sourcePath).
		Str("function", functionName).
		Int("context_lines", contextLines).
		Str("profile", profile.Name).
		Msg("Resolved prompt inputs")

	return &promptInputs{
		appConfig: appCfg,
		request: prompt.Request{
			SourceText:      source,
			TaskDescription: task,
			FunctionName:    functionName,
			ContextLines:    contextLines,
			Profile:         profile,
		},
	}, nil
}

// buildOutput is the JSON shape of 'cprompt build -o json'.
type buildOutput struct {
	Prompt    string   `json:"prompt"`
	Profile   string   `json:"profile"`
	Imports   []string `json:"imports"`
	Context   []string `json:"context"`
	MatchLine int      `json:"match_line"`
	LineCount int      `json:"line_count"`
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result as JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// outputFormat returns the --output flag value, validated.
func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "", "text":
		return "text", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("%w: %q (use text or json)", errUnsupportedOutput, format)
	}
}

// buildCmdRunner holds the dependencies for the build command.
type buildCmdRunner struct {
	configProvider ConfigProvider
}

// Run builds the prompt and writes it to the command's output.
func (r *buildCmdRunner) Run(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	inputs, err := resolvePromptInputs(r.configProvider, cmd, args)
	if err != nil {
		return err
	}

	// Extract once and render from it, so JSON output reports exactly what went into the prompt.
	req := inputs.request
	extraction := prompt.Extract(req.SourceText, req.FunctionName, req.ContextLines)
	text := prompt.Render(req, extraction)
	Log.Info().
		Int("imports", len(extraction.Imports)).
		Int("context_lines", len(extraction.Context)).
		Int("match_line", extraction.MatchLine).
		Msg("Prompt built")

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeJSON(out, buildOutput{
			Prompt:    text,
			Profile:   req.Profile.Name,
			Imports:   extraction.Imports,
			Context:   extraction.Context,
			MatchLine: extraction.MatchLine,
			LineCount: extraction.LineCount,
		})
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [task description...]",
	Short: "Build a code-generation prompt and print it",
	Long: `Builds a structured prompt from a source file, a task description and an
optional function name, then prints it to stdout.

Example:
  cprompt build -f app.py -n aggregate_by_category "Aggregate data by category"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := GetProvider()
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		runner := &buildCmdRunner{configProvider: provider.Config}
		return runner.Run(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	addPromptFlags(buildCmd)
}
