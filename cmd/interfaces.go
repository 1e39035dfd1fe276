package cmd

import (
	"io"

	"github.com/karolswdev/codeprompt/internal/config"
)

// ConfigProvider defines an interface for components that load the configuration
// of the codeprompt application: the main config, user profiles, source files and
// the API key. It also covers managing the configuration directory and its default
// files. Commands depend on it so tests can mock all file system access.
type ConfigProvider interface {
	LoadConfig() (*config.AppConfig, error)
	LoadProfiles() (*config.ProfilesConfig, error)
	LoadSource(path string, stdin io.Reader) (string, error)
	GetAPIKey() (string, error)
	CreateDefaultConfigFiles(configDir string) error
	EnsureConfigDir() (string, error)
}

// KeyringClient defines an interface for components that interact with the
// operating system's secure credential store, used for the LLM API key.
type KeyringClient interface {
	Set(service, user, password string) error
	GetAPIKey(service, user string) (string, error)
}
