package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

const defaultRetryInterval = 500 * time.Millisecond

// WithMaxRetries sets how many times a transient API failure is retried. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(o *OpenAIClient) { o.maxRetries = max(0, n) }
}

// WithRetryInterval sets the first backoff interval; later ones grow exponentially.
func WithRetryInterval(d time.Duration) Option {
	return func(o *OpenAIClient) { o.retryInterval = d }
}

// IsRetryable reports whether err from the chat API is worth another attempt:
// rate limits, 5xx answers and network errors. Auth and request errors are not.
func IsRetryable(err error) bool {
	// The caller gave up (--timeout or Ctrl-C); another attempt would fail the same way.
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// The API answered with an error body: decide on the status code.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	// The API answered but the body was not an OpenAI error (proxies, gateways).
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	// No answer at all: dial failures, resets, client-side timeouts.
	var netErr net.Error
	return errors.As(err, &netErr)
}

// retryableStatus treats rate limits and server-side failures as transient.
// 4xx other than 429 (bad key, bad model, oversized prompt) will not change on retry.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// createWithRetry sends req, retrying transient failures with exponential backoff.
func (o *OpenAIClient) createWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	interval := o.retryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval

	attempt := 0
	operation := func() (openai.ChatCompletionResponse, error) {
		attempt++
		resp, err := o.client.CreateChatCompletion(ctx, req)
		// Permanent stops backoff.Retry at once and returns err unwrapped.
		if err != nil && !IsRetryable(err) {
			return resp, backoff.Permanent(err)
		}
		return resp, err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("Transient LLM API error, retrying")
	}

	// MaxTries counts the first attempt too.
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(o.maxRetries+1)),
		backoff.WithNotify(notify),
	)
}
