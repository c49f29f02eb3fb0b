// Package openai implements llm.Completer against any OpenAI-compatible
// chat-completions endpoint (Groq by default).
package openai

import (
	"context"
	"errors"
	"strings"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/shpitdev/vc-enricher/internal/llm"
	"github.com/shpitdev/vc-enricher/pkg/pipeline/redact"
)

const bodySnippetBytes = 512

type Client struct {
	api oai.Client
	cfg llm.Config
}

// New builds a client. An empty APIKey is accepted here and reported by
// Complete as llm.ErrMissingCredential.
func New(cfg llm.Config, opts ...option.RequestOption) *Client {
	cfg = cfg.WithDefaults()
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		// One attempt per stage; callers own any retry policy.
		option.WithMaxRetries(0),
	}
	reqOpts = append(reqOpts, opts...)
	return &Client{
		api: oai.NewClient(reqOpts...),
		cfg: cfg,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", llm.ErrMissingCredential
	}

	resp, err := c.api.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: c.cfg.Model,
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage(prompt),
		},
		Temperature: oai.Float(c.cfg.Temperature),
		MaxTokens:   oai.Int(int64(c.cfg.MaxTokens)),
	})
	if err != nil {
		return "", classifyErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyReply
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyReply
	}
	return text, nil
}

func classifyErr(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return &llm.UpstreamError{
			Provider:   llm.ProviderOpenAI,
			StatusCode: apiErr.StatusCode,
			Body:       redact.Snippet([]byte(apiErr.RawJSON()), bodySnippetBytes),
			Err:        err,
		}
	}
	return err
}
