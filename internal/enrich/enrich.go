// Package enrich turns a company website into a structured profile.
//
// One call runs a fixed sequence: validate the URL, fetch page text through
// the reader proxy, truncate it, ask the model for a profile, recover the
// profile from the reply, and, when company context is supplied, ask the model
// for a thesis score. The profile is all-or-nothing; the score is best-effort.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shpitdev/vc-enricher/internal/extract"
	"github.com/shpitdev/vc-enricher/internal/llm"
	"github.com/shpitdev/vc-enricher/internal/reader"
	"github.com/shpitdev/vc-enricher/pkg/pipeline/redact"
	"github.com/shpitdev/vc-enricher/pkg/profile"
)

// DefaultCompletionTimeout bounds each model call.
const DefaultCompletionTimeout = 60 * time.Second

const replyPreviewChars = 500

// Request is the input to one enrichment.
type Request struct {
	Website string
	// Company enables thesis scoring when non-nil.
	Company *profile.Company
}

// Enricher enriches a single company website.
type Enricher interface {
	Enrich(ctx context.Context, req Request) (profile.Profile, error)
}

// Fetcher retrieves readable page text for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (reader.Page, error)
}

type Options struct {
	Thesis string
	// MaxChars bounds the page text embedded in the prompt.
	MaxChars          int
	CompletionTimeout time.Duration
	Logger            *zap.Logger
	// Now is the clock used for ScrapedAt.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Thesis) == "" {
		o.Thesis = DefaultThesis
	}
	if o.MaxChars <= 0 {
		o.MaxChars = reader.DefaultMaxChars
	}
	if o.CompletionTimeout <= 0 {
		o.CompletionTimeout = DefaultCompletionTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service is the enrichment pipeline. It holds no per-call state and is safe
// for concurrent use.
type Service struct {
	fetcher   Fetcher
	completer llm.Completer
	opts      Options
}

func New(fetcher Fetcher, completer llm.Completer, opts Options) *Service {
	return &Service{
		fetcher:   fetcher,
		completer: completer,
		opts:      opts.withDefaults(),
	}
}

// Enrich runs the pipeline for req. Failures are returned as *Error.
func (s *Service) Enrich(ctx context.Context, req Request) (profile.Profile, error) {
	site, err := ValidateWebsite(req.Website)
	if err != nil {
		return profile.Profile{}, err
	}
	website := strings.TrimSpace(req.Website)
	log := s.opts.Logger.With(zap.String("website", website))

	start := time.Now()
	page, err := s.fetcher.Fetch(ctx, website)
	if err != nil {
		return profile.Profile{}, s.fetchFailed(log, err)
	}
	content := reader.Truncate(page.Text, s.opts.MaxChars)
	log.Debug("page fetched",
		zap.Int("bytes", page.Len()),
		zap.Int("chars", reader.CharCount(content)),
		zap.Duration("duration", time.Since(start)),
	)

	start = time.Now()
	reply, err := s.complete(ctx, buildExtractionPrompt(content))
	if err != nil {
		return profile.Profile{}, s.completionFailed(log, err)
	}
	log.Debug("extraction reply",
		zap.Duration("duration", time.Since(start)),
		zap.String("preview", redact.Secrets(preview(reply, replyPreviewChars))),
	)

	fields, strategy, ok := extract.Profile(reply)
	if !ok {
		log.Error("could not parse structured data from model reply",
			zap.Int("reply_chars", len(reply)),
		)
		return profile.Profile{}, newError(KindExtraction, "AI extraction failed: could not parse response", ErrNoRecord)
	}
	log.Debug("profile extracted", zap.Stringer("strategy", strategy))

	out := profile.Profile{
		Summary:    fields.Summary,
		WhatTheyDo: fields.WhatTheyDo,
		Keywords:   fields.Keywords,
		Signals:    fields.Signals,
		Source:     NormalizeSource(site),
	}
	if req.Company != nil {
		match := s.scoreThesis(ctx, log, *req.Company, out)
		out.ThesisMatch = &match
	}
	out.ScrapedAt = s.opts.Now().UTC()

	log.Info("enrichment complete",
		zap.Int("signals", len(out.Signals)),
		zap.Bool("thesis_scored", out.ThesisMatch != nil),
	)
	return out, nil
}

// scoreThesis never fails: any problem yields the default match.
func (s *Service) scoreThesis(ctx context.Context, log *zap.Logger, company profile.Company, p profile.Profile) profile.ThesisMatch {
	degraded := func(reason string, err error) profile.ThesisMatch {
		fields := []zap.Field{
			zap.Bool("scoring_degraded", true),
			zap.String("reason", reason),
		}
		if err != nil {
			fields = append(fields, zap.String("error", redact.Secrets(err.Error())))
		}
		log.Warn("thesis scoring failed; using default", fields...)
		return profile.DefaultThesisMatch()
	}

	prompt, err := buildScoringPrompt(s.opts.Thesis, company, p)
	if err != nil {
		return degraded("prompt", err)
	}
	reply, err := s.complete(ctx, prompt)
	if err != nil {
		return degraded("completion", err)
	}
	match, ok := extract.Score(reply)
	if !ok {
		return degraded("invalid_score", nil)
	}
	log.Debug("thesis scored", zap.Int("score", match.Score))
	return match
}

// completionTimeoutError marks a model call cut off by CompletionTimeout.
type completionTimeoutError struct {
	after time.Duration
}

func (e *completionTimeoutError) Error() string {
	return fmt.Sprintf("completion timed out after %s", e.after)
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.CompletionTimeout)
	defer cancel()

	reply, err := s.completer.Complete(callCtx, prompt)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return "", &completionTimeoutError{after: s.opts.CompletionTimeout}
	}
	return reply, err
}

func (s *Service) fetchFailed(log *zap.Logger, err error) error {
	var te *reader.TimeoutError
	if errors.As(err, &te) {
		log.Error("website fetch timed out", zap.Duration("timeout", te.After))
		return newError(KindFetchTimeout, fmt.Sprintf("Website fetch timed out (%s)", te.After), err)
	}

	fields := []zap.Field{zap.String("error", redact.Secrets(err.Error()))}
	var ue *reader.UpstreamError
	if errors.As(err, &ue) {
		fields = append(fields, zap.String("url", ue.URL), zap.Int("status", ue.StatusCode))
	}
	log.Error("website fetch failed", fields...)
	return newError(KindFetchUpstream, "Could not fetch website", err)
}

func (s *Service) completionFailed(log *zap.Logger, err error) error {
	log.Error("completion failed", zap.String("error", redact.Secrets(err.Error())))

	var te *completionTimeoutError
	var ue *llm.UpstreamError
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		return newError(KindConfig, "AI service is not configured", err)
	case errors.As(err, &te):
		return newError(KindCompletionTimeout, fmt.Sprintf("AI extraction timed out (%s)", te.after), err)
	case errors.As(err, &ue):
		return newError(KindCompletionUpstream, fmt.Sprintf("AI service error (status %d)", ue.StatusCode), err)
	case errors.Is(err, llm.ErrEmptyReply):
		return newError(KindEmptyReply, "AI extraction failed: no content returned", err)
	default:
		return newError(KindCompletionUpstream, "AI service unavailable", err)
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return reader.Truncate(s, n)
}
