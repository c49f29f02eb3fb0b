// Package reader fetches readable page text through a reader proxy and prepares
// it for a bounded LLM context.
//
// The proxy is addressed by appending the target URL to a fixed base, e.g.
// https://r.jina.ai/https://example.com, and returns a plain-text rendering.
package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shpitdev/vc-enricher/internal/version"
	"github.com/shpitdev/vc-enricher/pkg/pipeline/redact"
)

const (
	DefaultBaseURL = "https://r.jina.ai/"
	DefaultTimeout = 15 * time.Second

	userAgent = "vc-enricher/" + version.Current

	// Reader output is plain text; anything larger than this is not a page.
	maxBodyBytes = 4 << 20
	snippetBytes = 256
)

// Config configures a Fetcher. Zero values fall back to the defaults above.
type Config struct {
	BaseURL string
	// APIKey is optional; when set it is sent as a bearer token to the proxy.
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Page is the raw text returned for one URL.
type Page struct {
	URL  string
	Text string
}

// Len returns the page length in bytes.
func (p Page) Len() int { return len(p.Text) }

// TimeoutError is returned when the proxy does not answer within the fetch deadline.
type TimeoutError struct {
	URL   string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("reader: fetch %s timed out after %s", e.URL, e.After)
}

// UpstreamError is a sanitized summary of a non-2xx proxy response.
type UpstreamError struct {
	URL        string
	StatusCode int
	Status     string
	// Snippet is a redacted, truncated hint of the response body.
	Snippet string
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("reader: fetch %s: status=%s", e.URL, strings.TrimSpace(e.Status))
	if e.Snippet != "" {
		msg += " body=" + e.Snippet
	}
	return msg
}

// Fetcher retrieves page text via the reader proxy. It is safe for concurrent use.
type Fetcher struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

func New(cfg Config) *Fetcher {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{
		baseURL: base,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: timeout,
		client:  client,
	}
}

// Timeout returns the per-fetch deadline.
func (f *Fetcher) Timeout() time.Duration { return f.timeout }

// Fetch makes a single attempt to read target through the proxy.
//
// The request is cancelled when the fetch deadline expires or ctx is done,
// whichever comes first. Only the former yields a *TimeoutError.
func (f *Fetcher) Fetch(ctx context.Context, target string) (Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, f.baseURL+target, nil)
	if err != nil {
		return Page{}, fmt.Errorf("reader: build request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", userAgent)
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, f.classify(ctx, fetchCtx, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, f.classify(ctx, fetchCtx, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, &UpstreamError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Snippet:    redact.Snippet(body, snippetBytes),
		}
	}
	return Page{URL: target, Text: string(body)}, nil
}

func (f *Fetcher) classify(parent, fetchCtx context.Context, target string, err error) error {
	if parent.Err() == nil && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: target, After: f.timeout}
	}
	if parent.Err() != nil {
		return fmt.Errorf("reader: fetch %s: %w", target, parent.Err())
	}
	return fmt.Errorf("reader: fetch %s: %w", target, err)
}
