package cmd

import (
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/karolswdev/codeprompt/internal/config"
	"github.com/karolswdev/codeprompt/internal/llm"
)

// --- Concrete Implementations of Shared Interfaces ---

// DefaultConfigProvider implements the ConfigProvider interface using the config package.
// BaseDir overrides the configuration directory; empty means env var or ~/.codeprompt.
type DefaultConfigProvider struct {
	BaseDir string
}

func (p *DefaultConfigProvider) LoadConfig() (*config.AppConfig, error) {
	return config.LoadConfig(p.BaseDir)
}

func (p *DefaultConfigProvider) LoadProfiles() (*config.ProfilesConfig, error) {
	profiles, err := config.LoadProfiles(p.BaseDir)
	if err != nil {
		return nil, err
	}
	return &profiles, nil
}

func (p *DefaultConfigProvider) LoadSource(path string, stdin io.Reader) (string, error) {
	return config.LoadSource(path, stdin)
}

func (p *DefaultConfigProvider) GetAPIKey() (string, error) {
	return config.GetAPIKey()
}

// CreateDefaultConfigFiles writes the default files into configDir, or into the
// provider's directory when configDir is empty.
func (p *DefaultConfigProvider) CreateDefaultConfigFiles(configDir string) error {
	if configDir == "" {
		configDir = p.BaseDir
	}
	return config.CreateDefaultConfigFiles(configDir)
}

func (p *DefaultConfigProvider) EnsureConfigDir() (string, error) {
	return config.EnsureConfigDir(p.BaseDir)
}

// --- Keyring Client Implementation ---

// defaultKeyringClient implements the KeyringClient interface using the keyring package.
type defaultKeyringClient struct{}

// Set stores password through config.SetAPIKey, which owns the keyring service and
// account names, so service and user must match config.KeyringServiceName and
// config.KeyringUserName.
func (k *defaultKeyringClient) Set(service, user, password string) error {
	if service != config.KeyringServiceName || user != config.KeyringUserName {
		return fmt.Errorf("unexpected keyring entry %s/%s", service, user)
	}
	return config.SetAPIKey(password)
}

// GetAPIKey resolves the key the same way 'generate' does: keyring first, then env var.
// service and user are accepted for interface symmetry with Set.
func (k *defaultKeyringClient) GetAPIKey(service, user string) (string, error) {
	return config.GetAPIKey()
}

// --- LLM Client Factory ---

// LLMFactory builds the model client for a loaded configuration.
// The generate runner takes one so tests can hand it a mock.
type LLMFactory func(cp ConfigProvider, appCfg *config.AppConfig) (llm.Client, error)

// newLLMClient creates the configured LLM client. It fails when the provider is
// unsupported or no API key can be found.
func newLLMClient(cp ConfigProvider, appCfg *config.AppConfig) (llm.Client, error) {
	switch appCfg.LLM.Provider {
	case "openai":
		apiKey, err := cp.GetAPIKey()
		if err != nil {
			return nil, err
		}
		Log.Debug().Str("provider", "openai").Msg("Initializing OpenAI LLM client")
		openAIConfig := openai.DefaultConfig(apiKey)
		if appCfg.LLM.OpenAI.BaseURL != "" {
			openAIConfig.BaseURL = appCfg.LLM.OpenAI.BaseURL
			Log.Debug().Str("base_url", openAIConfig.BaseURL).Msg("Using custom OpenAI BaseURL")
		}
		client, err := llm.NewOpenAIClient(
			openai.NewClientWithConfig(openAIConfig),
			appCfg.LLM.OpenAI.ModelName,
			llm.WithMaxTokens(appCfg.LLM.MaxTokens),
			llm.WithTemperature(appCfg.LLM.Temperature),
			llm.WithMaxRetries(appCfg.LLM.MaxRetries),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedProvider, appCfg.LLM.Provider)
	}
}

// --- Central Provider ---

// Provider aggregates the services commands depend on. Commands receive their
// dependencies from it, and tests replace them with mocks.
type Provider struct {
	Config  ConfigProvider
	Keyring KeyringClient
	NewLLM  LLMFactory
}

// GetProvider returns a Provider backed by the real config package, OS keyring and
// OpenAI client, honouring the --config-dir flag.
func GetProvider() (*Provider, error) {
	provider := &Provider{
		Config:  &DefaultConfigProvider{BaseDir: configDir},
		Keyring: &defaultKeyringClient{},
		NewLLM:  newLLMClient,
	}
	Log.Debug().Str("config_dir", configDir).Msg("Service Provider initialized successfully.")
	return provider, nil
}
