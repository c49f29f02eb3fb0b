// Package app wires configuration into a runnable pipeline and drives batch
// runs.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shpitdev/vc-enricher/internal/batch"
	"github.com/shpitdev/vc-enricher/internal/config"
	"github.com/shpitdev/vc-enricher/internal/enrich"
	"github.com/shpitdev/vc-enricher/internal/llm"
	"github.com/shpitdev/vc-enricher/internal/llm/gemini"
	"github.com/shpitdev/vc-enricher/internal/llm/openai"
	"github.com/shpitdev/vc-enricher/internal/reader"
	localio "github.com/shpitdev/vc-enricher/pkg/pipeline/io/local"
	"github.com/shpitdev/vc-enricher/pkg/pipeline/redact"
	"github.com/shpitdev/vc-enricher/pkg/profile"
)

// NewCompleter returns the completion backend selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg llm.Config) (llm.Completer, error) {
	cfg = cfg.WithDefaults()
	switch cfg.Provider {
	case llm.ProviderOpenAI:
		return openai.New(cfg), nil
	case llm.ProviderGemini:
		return gemini.New(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// NewService builds the enrichment pipeline from cfg.
func NewService(ctx context.Context, cfg config.Config, log *zap.Logger) (*enrich.Service, error) {
	completer, err := NewCompleter(ctx, cfg.LLMConfig())
	if err != nil {
		return nil, err
	}
	return enrich.New(reader.New(cfg.ReaderConfig()), completer, enrich.Options{
		Thesis:            cfg.Thesis,
		MaxChars:          cfg.Reader.MaxChars,
		CompletionTimeout: cfg.LLM.Timeout,
		Logger:            log,
	}), nil
}

// Output formats for RunBatch, chosen from the output file extension.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// OutputFormat maps an output path to a format.
func OutputFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatCSV
	}
}

// RunBatch reads an input CSV of companies and writes one output row per
// input row. JSONL output is streamed as rows complete; CSV output is written
// in input order once the run finishes.
func RunBatch(ctx context.Context, inputPath, outputPath string, opts batch.Options, enricher enrich.Enricher, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	log = log.With(zap.String("run", runID))
	runStart := time.Now()

	inF, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = inF.Close()
	}()

	companies, err := localio.ReadCompaniesCSV(inF)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}
	format := OutputFormat(outputPath)
	log.Info("batch run start",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("format", format),
		zap.Int("companies", len(companies)),
		zap.Int("workers", opts.Workers),
		zap.Duration("request_timeout", opts.RequestTimeout),
		zap.Float64("rate_limit_rps", opts.RateLimitRPS),
		zap.Bool("fail_fast", opts.FailFast),
	)

	outF, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = outF.Close()
	}()

	traced := newTracedEnricher(enricher, log)
	var okRows, errorRows int
	if format == FormatJSONL {
		w := batch.NewJSONLWriter(outF)
		completed := 0
		err = batch.EnrichCompaniesStream(ctx, companies, traced, opts, func(row batch.Row) error {
			completed++
			if row.Status == batch.StatusOK {
				okRows++
			} else {
				errorRows++
			}
			log.Debug("row written",
				zap.String("website", row.Website),
				zap.String("status", row.Status),
				zap.Int("completed", completed),
				zap.Int("total", len(companies)),
			)
			return w.Write(row)
		})
		if err != nil {
			return err
		}
	} else {
		rows, err := batch.EnrichCompanies(ctx, companies, traced, opts)
		if err != nil {
			return err
		}
		okRows, errorRows = batch.Counts(rows)
		if err := batch.WriteCSV(outF, rows); err != nil {
			return err
		}
	}
	if err := outF.Close(); err != nil {
		return err
	}

	log.Info("batch run complete",
		zap.Int("ok", okRows),
		zap.Int("error", errorRows),
		zap.Duration("duration", time.Since(runStart).Round(time.Millisecond)),
	)
	return nil
}

// tracedEnricher logs each enrichment request and its outcome.
type tracedEnricher struct {
	next enrich.Enricher
	log  *zap.Logger
}

func newTracedEnricher(next enrich.Enricher, log *zap.Logger) *tracedEnricher {
	return &tracedEnricher{next: next, log: log}
}

func (t *tracedEnricher) Enrich(ctx context.Context, req enrich.Request) (profile.Profile, error) {
	website := strings.TrimSpace(req.Website)
	deadlineIn := "none"
	if d, ok := ctx.Deadline(); ok {
		deadlineIn = time.Until(d).Round(time.Millisecond).String()
	}
	t.log.Debug("enrich request",
		zap.String("website", website),
		zap.Bool("thesis", req.Company != nil),
		zap.String("deadline_in", deadlineIn),
	)

	start := time.Now()
	out, err := t.next.Enrich(ctx, req)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		kind, _ := enrich.KindOf(err)
		t.log.Warn("enrich response",
			zap.String("website", website),
			zap.Duration("duration", elapsed),
			zap.String("status", batch.StatusError),
			zap.String("kind", string(kind)),
			zap.String("error", redact.Secrets(err.Error())),
		)
		return out, err
	}

	fields := []zap.Field{
		zap.String("website", website),
		zap.Duration("duration", elapsed),
		zap.String("status", batch.StatusOK),
		zap.Int("signals", len(out.Signals)),
	}
	if out.ThesisMatch != nil {
		fields = append(fields, zap.Int("thesis_score", out.ThesisMatch.Score))
	}
	t.log.Info("enrich response", fields...)
	return out, nil
}
