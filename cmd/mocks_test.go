package cmd

import (
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/karolswdev/codeprompt/internal/config"
)

// --- Mock ConfigProvider ---

type MockConfigProvider struct {
	mock.Mock
}

// LoadConfig matches ConfigProvider interface
func (m *MockConfigProvider) LoadConfig() (*config.AppConfig, error) {
	args := m.Called()
	cfg, _ := args.Get(0).(*config.AppConfig)
	return cfg, args.Error(1)
}

// LoadProfiles matches ConfigProvider interface
func (m *MockConfigProvider) LoadProfiles() (*config.ProfilesConfig, error) {
	args := m.Called()
	cfg, _ := args.Get(0).(*config.ProfilesConfig)
	return cfg, args.Error(1)
}

// LoadSource matches ConfigProvider interface. The reader is not part of the expectation.
func (m *MockConfigProvider) LoadSource(path string, stdin io.Reader) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

// GetAPIKey matches ConfigProvider interface
func (m *MockConfigProvider) GetAPIKey() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// CreateDefaultConfigFiles matches ConfigProvider interface
func (m *MockConfigProvider) CreateDefaultConfigFiles(configDir string) error {
	args := m.Called(configDir)
	return args.Error(0)
}

// EnsureConfigDir matches ConfigProvider interface
func (m *MockConfigProvider) EnsureConfigDir() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// --- Mock KeyringClient ---

type MockKeyringClient struct {
	mock.Mock
}

// Set matches KeyringClient interface
func (m *MockKeyringClient) Set(service, user, password string) error {
	args := m.Called(service, user, password)
	return args.Error(0)
}

// GetAPIKey matches KeyringClient interface
func (m *MockKeyringClient) GetAPIKey(service, user string) (string, error) {
	args := m.Called(service, user)
	return args.String(0), args.Error(1)
}
