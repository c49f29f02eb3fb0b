// Package llm defines the text-completion contract used by the enrichment
// pipeline and the errors every backend reports.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1/"
	DefaultOpenAIModel   = "llama-3.3-70b-versatile"
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultTemperature   = 0.2
	DefaultMaxTokens     = 2048
)

// Completer sends one prompt and returns the raw reply text.
//
// Calls are independent: no conversation state is kept between them.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var (
	// ErrMissingCredential is returned when no API key was provisioned.
	ErrMissingCredential = errors.New("llm: API key is not configured")
	// ErrEmptyReply is returned when the provider answered without any text.
	ErrEmptyReply = errors.New("llm: no content returned")
)

// UpstreamError is a non-success response from the completion endpoint.
type UpstreamError struct {
	Provider   string
	StatusCode int
	// Body is a redacted excerpt of the response body, for diagnostics only.
	Body string
	Err  error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("llm: %s api error: status=%d", e.Provider, e.StatusCode)
	if strings.TrimSpace(e.Body) != "" {
		msg += " body=" + strings.TrimSpace(e.Body)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Config is the explicit configuration handed to a backend constructor.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// WithDefaults fills unset fields with provider-specific defaults.
func (c Config) WithDefaults() Config {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Model = strings.TrimSpace(c.Model)

	switch c.Provider {
	case ProviderGemini:
		if c.Model == "" {
			c.Model = DefaultGeminiModel
		}
	default:
		if c.BaseURL == "" {
			c.BaseURL = DefaultOpenAIBaseURL
		}
		if !strings.HasSuffix(c.BaseURL, "/") {
			c.BaseURL += "/"
		}
		if c.Model == "" {
			c.Model = DefaultOpenAIModel
		}
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}
