package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shpitdev/vc-enricher/internal/config"
	"github.com/shpitdev/vc-enricher/internal/logging"
	"github.com/shpitdev/vc-enricher/internal/version"
	"github.com/shpitdev/vc-enricher/pkg/pipeline/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitError carries a process exit code. Its message has already been
// printed when msg is empty.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &exitError{code: 2, msg: fmt.Sprintf(format, args...)}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			_, _ = fmt.Fprintln(stderr, redact.Secrets(ee.msg))
		}
		return ee.code
	}
	// Anything cobra rejected before RunE is a usage problem.
	_, _ = fmt.Fprintln(stderr, redact.Secrets(err.Error()))
	return 2
}

type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var gf globalFlags
	root := &cobra.Command{
		Use:   "enricher",
		Short: "Enrich company websites into structured VC sourcing profiles",
		Long: `enricher fetches a company website through a reader proxy, asks a language
model for a structured profile, and optionally scores it against an
investment thesis.

Environment:
  GROQ_API_KEY       Model API key (openai provider, default)
  GEMINI_API_KEY     Model API key (gemini provider)
  LLM_PROVIDER       openai | gemini
  JINA_API_KEY       Optional reader proxy key
  INVESTMENT_THESIS  Thesis used for scoring

Settings can also come from a YAML file (--config) and .env/.env.local.`,
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&gf.configPath, "config", os.Getenv("ENRICHER_CONFIG"), "Optional YAML config file (env: ENRICHER_CONFIG)")
	root.PersistentFlags().StringVar(&gf.logLevel, "log-level", "", "Log level: debug|info|warn|error (env: LOG_LEVEL)")

	root.AddCommand(
		newEnrichCmd(&gf),
		newBatchCmd(&gf),
		newServeCmd(&gf),
	)
	return root
}

// setup loads configuration and builds the logger shared by every command.
func setup(gf *globalFlags) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(gf.configPath)
	if err != nil {
		return config.Config{}, nil, usageErrorf("config error: %s", err)
	}
	if gf.logLevel != "" {
		cfg.Log.Level = gf.logLevel
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return config.Config{}, nil, usageErrorf("logger error: %s", err)
	}
	return cfg, log, nil
}
