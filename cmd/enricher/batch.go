package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shpitdev/vc-enricher/internal/app"
	"github.com/shpitdev/vc-enricher/internal/batch"
)

func newBatchCmd(gf *globalFlags) *cobra.Command {
	var (
		inputPath      string
		outputPath     string
		workers        int
		requestTimeout time.Duration
		rateLimitRPS   float64
		failFast       bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Enrich every company in a CSV file",
		Long: `Enrich every company in a CSV file.

The input needs a "website" column; "id", "name" and "description" are used
when present, and rows with a name or description are thesis-scored. Output is
CSV, or JSON lines when --output ends in .jsonl.

Examples:
  enricher batch --input companies.csv --output enriched.csv
  enricher batch --input companies.csv --output enriched.jsonl --workers 4 --rate-limit-rps 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputPath == "" || outputPath == "" {
				return usageErrorf("batch requires --input and --output")
			}
			cfg, log, err := setup(gf)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			opts := batch.Options{
				Workers:        cfg.Batch.Workers,
				RequestTimeout: cfg.Batch.RequestTimeout,
				RateLimitRPS:   cfg.Batch.RateLimitRPS,
				FailFast:       cfg.Batch.FailFast,
			}
			flags := cmd.Flags()
			if flags.Changed("workers") {
				opts.Workers = workers
			}
			if flags.Changed("request-timeout") {
				opts.RequestTimeout = requestTimeout
			}
			if flags.Changed("rate-limit-rps") {
				opts.RateLimitRPS = rateLimitRPS
			}
			if flags.Changed("fail-fast") {
				opts.FailFast = failFast
			}

			if !cfg.HasLLMCredential() {
				log.Warn(cfg.CredentialEnv() + " is not set; every row will fail")
			}
			svc, err := app.NewService(cmd.Context(), cfg, log)
			if err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("setup failed: %s", err)}
			}
			if err := app.RunBatch(cmd.Context(), inputPath, outputPath, opts, svc, log); err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("batch run failed: %s", err)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "Input CSV file path (must include a 'website' column)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output file path (.csv or .jsonl)")
	cmd.Flags().IntVar(&workers, "workers", 10, "Number of concurrent enrichment workers (env: WORKERS)")
	cmd.Flags().DurationVar(&requestTimeout, "request-timeout", 2*time.Minute, "Per-company deadline (env: REQUEST_TIMEOUT)")
	cmd.Flags().Float64Var(&rateLimitRPS, "rate-limit-rps", 0, "Global enrichment start rate (RPS), 0 disables (env: RATE_LIMIT_RPS)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop on the first failed company (env: FAIL_FAST)")
	return cmd
}
