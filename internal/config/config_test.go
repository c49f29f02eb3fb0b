package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shpitdev/vc-enricher/internal/llm"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := load("", envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
	if cfg.HasLLMCredential() {
		t.Fatalf("no credential should be configured")
	}

	lc := cfg.LLMConfig()
	if lc.BaseURL != llm.DefaultOpenAIBaseURL || lc.Model != llm.DefaultOpenAIModel {
		t.Fatalf("unexpected llm config: %#v", lc)
	}
	if cfg.ReaderConfig().Timeout != 15*time.Second || cfg.Reader.MaxChars != 8000 {
		t.Fatalf("unexpected reader defaults: %#v", cfg.Reader)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
reader:
  timeout: 5s
  max_chars: 4000
llm:
  model: from-file
  temperature: 0.5
batch:
  workers: 3
  fail_fast: true
thesis: File thesis.
`)
	cfg, err := load(path, envMap(map[string]string{
		"LLM_MODEL":      "from-env",
		"GROQ_API_KEY":   "gsk_abc",
		"JINA_API_KEY":   "jina_abc",
		"RATE_LIMIT_RPS": "2.5",
		"LLM_TIMEOUT":    "30s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Reader.Timeout != 5*time.Second || cfg.Reader.MaxChars != 4000 || cfg.Reader.APIKey != "jina_abc" {
		t.Fatalf("unexpected reader config: %#v", cfg.Reader)
	}
	if cfg.LLM.Model != "from-env" || cfg.LLM.Temperature != 0.5 || cfg.LLM.APIKey != "gsk_abc" || cfg.LLM.Timeout != 30*time.Second {
		t.Fatalf("unexpected llm config: %#v", cfg.LLM)
	}
	if cfg.Batch.Workers != 3 || !cfg.Batch.FailFast || cfg.Batch.RateLimitRPS != 2.5 {
		t.Fatalf("unexpected batch config: %#v", cfg.Batch)
	}
	if cfg.Thesis != "File thesis." {
		t.Fatalf("unexpected thesis: %q", cfg.Thesis)
	}
	if cfg.LLM.MaxTokens != llm.DefaultMaxTokens {
		t.Fatalf("unset keys should keep defaults, got max_tokens=%d", cfg.LLM.MaxTokens)
	}
}

func TestLoad_CredentialFollowsProvider(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"LLM_PROVIDER":   "Gemini",
		"GROQ_API_KEY":   "gsk_wrong",
		"GEMINI_API_KEY": "gem_right",
	}
	cfg, err := load("", envMap(vars))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != llm.ProviderGemini || cfg.LLM.APIKey != "gem_right" {
		t.Fatalf("unexpected llm config: %#v", cfg.LLM)
	}
	if cfg.CredentialEnv() != "GEMINI_API_KEY" {
		t.Fatalf("unexpected credential env: %s", cfg.CredentialEnv())
	}
	if got := cfg.LLMConfig().Model; got != llm.DefaultGeminiModel {
		t.Fatalf("unexpected gemini model: %q", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad int", env: map[string]string{"WORKERS": "many"}, wantErr: `invalid WORKERS="many"`},
		{name: "bad duration", env: map[string]string{"READER_TIMEOUT": "15"}, wantErr: `invalid READER_TIMEOUT="15"`},
		{name: "bad bool", env: map[string]string{"FAIL_FAST": "sometimes"}, wantErr: `invalid FAIL_FAST="sometimes"`},
		{name: "unknown provider", env: map[string]string{"LLM_PROVIDER": "anthropic"}, wantErr: `unknown llm.provider "anthropic"`},
		{name: "temperature out of range", env: map[string]string{"LLM_TEMPERATURE": "3"}, wantErr: "llm.temperature"},
		{name: "bad yaml", file: "reader: [", wantErr: "parse config file"},
		{name: "zero max chars", file: "reader:\n  max_chars: 0\n", wantErr: "reader.max_chars"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := load(path, envMap(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := load(filepath.Join(t.TempDir(), "nope.yml"), envMap(nil))
	if err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
