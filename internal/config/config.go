package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/spf13/viper"

	"github.com/karolswdev/codeprompt/internal/prompt"
)

const (
	// DefaultConfigFileName is the standard name for the main configuration file.
	DefaultConfigFileName = "config.yaml"
	// DefaultProfilesFileName is the standard name for the user prompt profiles file.
	DefaultProfilesFileName = "profiles.yaml"
	// DefaultConfigDirName is the standard name for the configuration directory within the user's home directory.
	DefaultConfigDirName = ".codeprompt"
	// ConfigDirEnvVar is the environment variable used to override the default configuration directory path.
	ConfigDirEnvVar = "CODEPROMPT_CONFIG_DIR"
)

// EnsureConfigDir checks if the configuration directory exists, creating it if necessary.
// It prioritizes baseDir if provided, then the CODEPROMPT_CONFIG_DIR environment variable,
// and finally ~/.codeprompt. New directories are created with 0700.
func EnsureConfigDir(baseDir string) (string, error) {
	var configDirPath string

	switch {
	case baseDir != "":
		// Use provided baseDir (the --config-dir flag)
		configDirPath = baseDir
		log.Debug().Str("path", configDirPath).Msg("Using provided base directory path")
	case os.Getenv(ConfigDirEnvVar) != "":
		configDirPath = os.Getenv(ConfigDirEnvVar)
		log.Debug().Str("path", configDirPath).Str("env_var", ConfigDirEnvVar).Msg("Using config directory path from environment variable")
	default:
		// Default behavior: use ~/.codeprompt
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDirPath = filepath.Join(homeDir, DefaultConfigDirName)
		log.Debug().Str("path", configDirPath).Msg("Using default config directory path")
	}

	info, err := os.Stat(configDirPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", configDirPath).Msg("Config directory does not exist, attempting to create")
			// Directory does not exist, create it (owner only)
			if mkdirErr := os.MkdirAll(configDirPath, 0700); mkdirErr != nil {
				log.Error().Err(mkdirErr).Str("path", configDirPath).Msg("Failed to create config directory")
				return "", fmt.Errorf("%w: %w", ErrConfigDirCreate, mkdirErr)
			}
			log.Info().Str("path", configDirPath).Msg("Successfully created config directory")
			return configDirPath, nil
		}
		// Another error occurred during stat (permissions, broken mount)
		log.Error().Err(err).Str("path", configDirPath).Msg("Failed to stat config directory path")
		return "", fmt.Errorf("%w: %w", ErrConfigDirStat, err)
	}

	if !info.IsDir() {
		log.Error().Str("path", configDirPath).Msg("Config path exists but is not a directory")
		return "", ErrConfigDirNotDir
	}

	log.Debug().Str("path", configDirPath).Msg("Config directory exists and is a directory")
	return configDirPath, nil
}

// OpenAIConfig holds configuration specific to the OpenAI provider.
type OpenAIConfig struct {
	ModelName string `mapstructure:"model_name"`
	BaseURL   string `mapstructure:"base_url"` // Optional, for proxies and OpenAI-compatible servers
}

// LLMConfig holds the model provider selection and sampling settings.
type LLMConfig struct {
	Provider    string       `mapstructure:"provider"` // currently only "openai"
	MaxTokens   int          `mapstructure:"max_tokens"`
	Temperature float32      `mapstructure:"temperature"`
	MaxRetries  int          `mapstructure:"max_retries"` // retries after a transient API failure
	OpenAI      OpenAIConfig `mapstructure:"openai"`
}

// AppConfig holds the overall application configuration.
type AppConfig struct {
	ContextLines int       `mapstructure:"context_lines"`
	Profile      string    `mapstructure:"profile"`
	LLM          LLMConfig `mapstructure:"llm"`
}

// LoadConfig loads the application configuration from baseDir/config.yaml (or the default
// directory), CODEPROMPT_* environment variables, and defaults.
// A missing config file is not an error.
func LoadConfig(baseDir string) (*AppConfig, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure config directory: %w", err)
	}

	// Local viper instance; the package-level viper is never touched.
	v := viper.New()

	// Defaults apply when config.yaml is missing or leaves a key out.

	v.SetDefault("context_lines", prompt.DefaultContextLines)
	v.SetDefault("profile", prompt.DefaultProfileName)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.openai.model_name", "gpt-4o")
	v.SetDefault("llm.openai.base_url", "")

	configPath := filepath.Join(configDir, DefaultConfigFileName)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	log.Debug().Str("path", configPath).Msg("Attempting to load config file")

	// llm.openai.model_name -> CODEPROMPT_LLM_OPENAI_MODEL_NAME
	v.SetEnvPrefix("CODEPROMPT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err = v.ReadInConfig()
	if err != nil {
		// viper reports a missing file as ConfigFileNotFoundError; that is the normal
		// first-run state, so fall through to defaults and env vars.
		// Any other error means the file exists but is unreadable or malformed.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Info().Str("path", configPath).Msg("Config file not found. Using defaults and environment variables.")
		} else {
			log.Error().Err(err).Str("path", configPath).Msg("Failed to read config file")
			return nil, fmt.Errorf("%w: %w", ErrConfigRead, err)
		}
	} else {
		log.Debug().Str("path", configPath).Msg("Read config file successfully")
	}

	// Unmarshal merges defaults, file values and env overrides via mapstructure tags.
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("Failed to unmarshal config file")
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	log.Debug().Str("path", configPath).Interface("config", cfg).Msg("Unmarshalled config successfully")

	return &cfg, nil
}

// ProfilesConfig holds the user defined prompt profiles.
type ProfilesConfig struct {
	Profiles []prompt.Profile `yaml:"profiles"`
}

// LoadProfiles loads user prompt profiles from baseDir/profiles.yaml (or the default directory).
// It returns an empty ProfilesConfig if the file doesn't exist, and an error if it
// exists but cannot be read or parsed.
func LoadProfiles(baseDir string) (ProfilesConfig, error) {
	var cfg ProfilesConfig

	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return cfg, fmt.Errorf("failed to ensure config directory for profiles: %w", err)
	}

	profilesPath := filepath.Join(configDir, DefaultProfilesFileName)
	log.Debug().Str("path", profilesPath).Msg("Attempting to load profiles file")

	fileBytes, err := os.ReadFile(profilesPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Not an error: built-in profiles cover the common cases.
			log.Debug().Str("path", profilesPath).Msg("Profiles file not found, using built-in profiles only")
			cfg.Profiles = []prompt.Profile{}
			return cfg, nil
		}
		log.Error().Err(err).Str("path", profilesPath).Msg("Failed to read profiles file")
		return cfg, fmt.Errorf("%w: %w", ErrProfilesRead, err)
	}

	if err := yaml.Unmarshal(fileBytes, &cfg); err != nil {
		log.Error().Err(err).Str("path", profilesPath).Msg("Failed to parse profiles file")
		return cfg, fmt.Errorf("%w: %w", ErrProfilesParse, err)
	}

	// A nameless profile could never be selected with --profile.
	for i, p := range cfg.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			log.Error().Str("path", profilesPath).Int("index", i).Msg("Profile entry has no name")
			return cfg, fmt.Errorf("%w: entry %d has no name", ErrProfilesParse, i)
		}
	}

	// An empty or comment-only file leaves Profiles nil.
	if cfg.Profiles == nil {
		cfg.Profiles = []prompt.Profile{}
	}
	log.Debug().Str("path", profilesPath).Int("profiles", len(cfg.Profiles)).Msg("Parsed profiles file successfully")

	return cfg, nil
}

// SourceStdin is the path value that makes LoadSource read from its reader.
const SourceStdin = "-"

// LoadSource returns the content of the source file at path. An empty path yields
// an empty source, and SourceStdin reads everything from stdin.
func LoadSource(path string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		log.Debug().Msg("No source file given, using empty source")
		return "", nil
	case SourceStdin:
		log.Debug().Msg("Reading source from stdin")
		data, err := io.ReadAll(stdin)
		if err != nil {
			log.Error().Err(err).Msg("Failed to read source from stdin")
			return "", fmt.Errorf("%w: %w", ErrSourceRead, err)
		}
		return string(data), nil
	}

	log.Debug().Str("path", path).Msg("Attempting to load source file")
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to read source file")
		return "", fmt.Errorf("%w: %w", ErrSourceRead, err)
	}
	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("Read source file successfully")
	return string(data), nil
}

// --- Default File Creation ---

const defaultConfigYAML = `# User-specific configuration for the codeprompt CLI (cprompt)
# Located at ~/.codeprompt/config.yaml

# Lines of source kept on each side of the line that mentions the target function.
context_lines: 5

# Prompt profile used when --profile is not given ("default", "python", "go",
# or any name defined in profiles.yaml).
profile: "default"

# Model used by 'cprompt generate'.
llm:
  provider: "openai"
  # 0 leaves the limit to the provider.
  max_tokens: 0
  temperature: 0.2
  # Retries for rate limits, 5xx answers and network errors.
  max_retries: 2
  openai:
    model_name: "gpt-4o"
    # Optional: OpenAI-compatible endpoint (proxy, local server)
    # base_url: ""
`

const defaultProfilesYAML = `# ~/.codeprompt/profiles.yaml
# Custom prompt profiles. A profile with the same name as a built-in one replaces it.
profiles:
  - name: "python-google"
    language: "Python"
    style_guide: "Google Python Style Guide"
  # - name: "typescript"
  #   language: "TypeScript"
  #   guidelines:
  #     - "Use explicit types for parameters and return values"
  #     - "Add a TSDoc comment"
  #     - "Follow the project's ESLint rules"
  #     - "Handle rejected promises"
  #     - "Add comments for complex logic"
`

// writeFileIfNotExists writes content to filePath unless the file already exists.
func writeFileIfNotExists(filePath string, content string, perm os.FileMode) error {
	_, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", filePath).Msg("File does not exist, attempting to write default content")
			if errWrite := os.WriteFile(filePath, []byte(content), perm); errWrite != nil {
				log.Error().Err(errWrite).Str("path", filePath).Msg("Failed to write default file content")
				return fmt.Errorf("%w: %w", ErrDefaultFileWrite, errWrite)
			}
			log.Info().Str("path", filePath).Msg("Successfully wrote default file content")
			return nil
		}
		log.Error().Err(err).Str("path", filePath).Msg("Failed to stat file path")
		return fmt.Errorf("%w: %w", ErrDefaultFileStat, err)
	}
	log.Debug().Str("path", filePath).Msg("File already exists, no action needed")
	return nil
}

// CreateDefaultConfigFiles ensures the configuration directory exists and writes
// config.yaml and profiles.yaml into it if they are missing.
func CreateDefaultConfigFiles(baseDir string) error {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}

	filesToCreate := []struct {
		name    string
		content string
		perm    os.FileMode
	}{
		{DefaultConfigFileName, defaultConfigYAML, 0600},
		{DefaultProfilesFileName, defaultProfilesYAML, 0644},
	}

	for _, file := range filesToCreate {
		filePath := filepath.Join(configDir, file.name)
		log.Debug().Str("file", file.name).Msg("Ensuring default file")
		if err := writeFileIfNotExists(filePath, file.content, file.perm); err != nil {
			return err
		}
	}

	return nil
}

// --- API Key Handling ---

const (
	// KeyringServiceName is the OS keyring service the API key is stored under.
	KeyringServiceName = "codeprompt"
	// KeyringUserName is the OS keyring account the API key is stored under.
	KeyringUserName = "llm_api_key"
	// EnvAPIKeyName is the environment variable checked when the keyring has no key.
	EnvAPIKeyName = "CODEPROMPT_LLM_API_KEY"
)

// GetAPIKey retrieves the model API key, first from the OS keyring and then from
// CODEPROMPT_LLM_API_KEY. A keyring that cannot be reached (no secret service on a
// headless host, a locked keychain) does not stop the env var lookup.
// It returns ErrAPIKeyNotFound when neither has a key, and ErrKeyringGet when the
// keyring failed and the env var is empty.
func GetAPIKey() (string, error) {
	log.Debug().Str("service", KeyringServiceName).Str("user", KeyringUserName).Msg("Attempting to get API key from keychain")
	key, err := keyring.Get(KeyringServiceName, KeyringUserName)
	if err == nil {
		log.Debug().Msg("API key retrieved successfully (from keychain)")
		return key, nil
	}

	// Anything other than "no such entry" means the keyring itself is unusable.
	// Remember the error so it can be reported if the env var is empty too.
	var keyringErr error
	if errors.Is(err, keyring.ErrNotFound) {
		log.Debug().Msgf("API key not found in keychain, checking environment variable %s", EnvAPIKeyName)
	} else {
		log.Warn().Err(err).Str("service", KeyringServiceName).Str("user", KeyringUserName).
			Msgf("Error reading key from keychain, checking environment variable %s", EnvAPIKeyName)
		keyringErr = err
	}

	if key = os.Getenv(EnvAPIKeyName); key != "" {
		log.Debug().Msg("API key retrieved successfully (from env var)")
		return key, nil
	}

	if keyringErr != nil {
		log.Error().Err(keyringErr).Str("env_var", EnvAPIKeyName).Msg("Keychain unavailable and environment variable not set")
		return "", fmt.Errorf("%w: %w", ErrKeyringGet, keyringErr)
	}
	log.Warn().Str("env_var", EnvAPIKeyName).Msg("API key not found in keychain or environment")
	return "", ErrAPIKeyNotFound
}

// SetAPIKey stores the model API key in the OS keyring.
func SetAPIKey(apiKey string) error {
	log.Debug().Str("service", KeyringServiceName).Str("user", KeyringUserName).Msg("Attempting to set API key in keychain")
	if err := keyring.Set(KeyringServiceName, KeyringUserName, apiKey); err != nil {
		log.Error().Err(err).Str("service", KeyringServiceName).Str("user", KeyringUserName).Msg("Failed to set API key in keychain")
		return fmt.Errorf("%w: %w", ErrKeyringSet, err)
	}
	log.Info().Str("service", KeyringServiceName).Str("user", KeyringUserName).Msg("API key stored successfully in keychain")
	return nil
}
