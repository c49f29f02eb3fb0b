// Package gemini implements llm.Completer on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/shpitdev/vc-enricher/internal/llm"
	"github.com/shpitdev/vc-enricher/pkg/pipeline/redact"
)

type Client struct {
	client *genai.Client
	cfg    llm.Config
}

// New builds a client. With an empty APIKey no SDK client is created and
// Complete reports llm.ErrMissingCredential.
func New(ctx context.Context, cfg llm.Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	c := &Client{cfg: cfg}
	if cfg.APIKey == "" {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	c.client = client
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", llm.ErrMissingCredential
	}

	temperature := float32(c.cfg.Temperature)
	resp, err := c.client.Models.GenerateContent(
		ctx,
		c.cfg.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: int32(c.cfg.MaxTokens),
			CandidateCount:  1,
		},
	)
	if err != nil {
		return "", classifyErr(err)
	}
	if resp == nil {
		return "", llm.ErrEmptyReply
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyReply
	}
	return text, nil
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.UpstreamError{
			Provider:   llm.ProviderGemini,
			StatusCode: apiErr.Code,
			Body:       redact.Snippet([]byte(apiErr.Message), 512),
			Err:        err,
		}
	}
	return err
}
