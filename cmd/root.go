package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set during build time (e.g., via ldflags)
// Default is "dev" for local development.
var version = "dev"

var (
	logLevel  string
	configDir string
	// Log is the globally configured zerolog logger instance used throughout the cmd package.
	// It's initialized in rootCmd's PersistentPreRunE based on the --log-level flag.
	Log zerolog.Logger
	// loggerConfigured is false until configureLogger runs; the zero Logger discards everything.
	loggerConfigured bool
)

// configureLogger sets up the global zerolog logger based on the logLevel flag.
// Logs go to stderr so prompts written to stdout can be piped.
func configureLogger(levelStr string) error {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		log.Warn().Msgf("Invalid log level '%s', defaulting to 'warn'", levelStr)
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	Log = log.Logger.With().Timestamp().Logger()
	loggerConfigured = true

	Log.Debug().Msgf("Log level set to '%s'", level.String())
	return nil
}

// persistentPreRunLogic configures logging before any subcommand runs.
// --version is answered by cobra itself, which skips this hook entirely.
func persistentPreRunLogic(cmd *cobra.Command, args []string) error {
	return configureLogger(logLevel)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cprompt",
	Short: "codeprompt CLI - build prompts for AI code generation",
	Long: `codeprompt (cprompt) turns an existing source file, a task description and
an optional target function name into a structured prompt for an AI
code-generation model. It can print the prompt for use elsewhere or send
it to an OpenAI-compatible model directly.`,
	Version:           version,
	PersistentPreRunE: persistentPreRunLogic,
	SilenceUsage:      true,
	// Execute logs the error once through zerolog; cobra's own "Error:" line would repeat it.
	SilenceErrors: true,
}

// Execute is the main entry point for the Cobra CLI application.
// It is called directly from main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		// Flag and argument errors happen before PersistentPreRunE, so the logger
		// may still be the zero value. cobra's own error print is silenced.
		if !loggerConfigured {
			_ = configureLogger(logLevel)
		}
		Log.Error().Err(err).Msg("Command execution failed")
		os.Exit(1)
	}
}

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(cprompt completion bash)

Zsh:
  $ cprompt completion zsh > "${fpath[1]}/_cprompt"

Fish:
  $ cprompt completion fish | source

PowerShell:
  PS> cprompt completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell type %q", args[0])
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Set log level (debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default $CODEPROMPT_CONFIG_DIR or ~/.codeprompt)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text|json)")

	// Print just the version, e.g. for scripts checking the installed build.
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(completionCmd)
}
