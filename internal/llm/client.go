package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// Completion is a model reply to a code prompt.
type Completion struct {
	Raw          string    `json:"raw"`
	Code         CodeBlock `json:"code"`
	Model        string    `json:"model"`
	FinishReason string    `json:"finish_reason,omitempty"`
	TotalTokens  int       `json:"total_tokens"`
}

// Client defines the interface for sending a code prompt to an LLM provider.
type Client interface {
	// GenerateCode sends codePrompt to the model and returns its reply with the code extracted.
	GenerateCode(ctx context.Context, codePrompt string) (Completion, error)
}

// OpenAIClient implements the llm.Client interface for the OpenAI API and compatible servers.
type OpenAIClient struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32

	maxRetries    int
	retryInterval time.Duration
}

// Option customises an OpenAIClient.
type Option func(*OpenAIClient)

// WithMaxTokens caps the reply length. Zero leaves the limit to the provider.
func WithMaxTokens(n int) Option {
	return func(o *OpenAIClient) { o.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *OpenAIClient) { o.temperature = t }
}

// NewOpenAIClient creates a new OpenAI client wrapper.
// It requires a configured go-openai client; an empty model name defaults to gpt-4o.
func NewOpenAIClient(client *openai.Client, modelName string, opts ...Option) (*OpenAIClient, error) {
	if client == nil {
		return nil, ErrLLMClientNil
	}
	if modelName == "" {
		log.Warn().Msg("modelName is empty for OpenAIClient, defaulting to gpt-4o")
		modelName = openai.GPT4o
	}
	o := &OpenAIClient{
		client:    client,
		modelName: modelName,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// GenerateCode implements the llm.Client interface for OpenAI.
func (o *OpenAIClient) GenerateCode(ctx context.Context, codePrompt string) (Completion, error) {
	if o.client == nil {
		return Completion{}, ErrLLMClientNil
	}
	if strings.TrimSpace(codePrompt) == "" {
		return Completion{}, ErrLLMPromptEmpty
	}

	req := openai.ChatCompletionRequest{
		Model:       o.modelName,
		Messages:    ConstructMessages(codePrompt),
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}

	log.Debug().Str("model", o.modelName).Int("prompt_length", len(codePrompt)).Msg("Sending request to OpenAI API")
	resp, err := o.createWithRetry(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("OpenAI API call failed")
		return Completion{}, fmt.Errorf("%w: %w", ErrLLMCompletion, err)
	}

	if len(resp.Choices) == 0 {
		log.Error().Msg("Received an empty response (no choices) from OpenAI")
		return Completion{}, ErrLLMEmptyResponse
	}
	choice := resp.Choices[0]
	log.Debug().Str("finish_reason", string(choice.FinishReason)).Int("total_tokens", resp.Usage.TotalTokens).Msg("Received response from OpenAI API")

	completion := Completion{
		Raw:          choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		TotalTokens:  resp.Usage.TotalTokens,
	}

	block, err := ExtractCode(completion.Raw)
	if err != nil {
		return completion, fmt.Errorf("failed to extract code from LLM response: %w", err)
	}
	completion.Code = block

	log.Info().Str("model", completion.Model).Msg("Successfully generated code from OpenAI")
	return completion, nil
}
