package cmd

// Mock implementations that other packages' tests may reuse.

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/karolswdev/codeprompt/internal/llm"
)

// MockLLMClient is a mock implementation of the llm.Client interface.
type MockLLMClient struct {
	mock.Mock
}

// GenerateCode matches llm.Client interface
func (m *MockLLMClient) GenerateCode(ctx context.Context, codePrompt string) (llm.Completion, error) {
	args := m.Called(ctx, codePrompt)
	var resp llm.Completion
	if respArg := args.Get(0); respArg != nil {
		resp = respArg.(llm.Completion)
	}
	return resp, args.Error(1)
}
