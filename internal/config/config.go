// Package config loads runtime settings.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults
//  2. an optional YAML file
//  3. .env.local and .env in the working directory (never overriding variables
//     that are already set)
//  4. environment variables
//
// A missing model credential is not a load error; it surfaces when the first
// completion is attempted.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shpitdev/vc-enricher/internal/enrich"
	"github.com/shpitdev/vc-enricher/internal/llm"
	"github.com/shpitdev/vc-enricher/internal/reader"
)

type Config struct {
	Reader Reader `yaml:"reader"`
	LLM    LLM    `yaml:"llm"`
	Thesis string `yaml:"thesis"`
	Server Server `yaml:"server"`
	Batch  Batch  `yaml:"batch"`
	Log    Log    `yaml:"log"`
}

type Reader struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxChars int           `yaml:"max_chars"`
}

type LLM struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Batch struct {
	Workers        int           `yaml:"workers"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	FailFast       bool          `yaml:"fail_fast"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Reader: Reader{
			BaseURL:  reader.DefaultBaseURL,
			Timeout:  reader.DefaultTimeout,
			MaxChars: reader.DefaultMaxChars,
		},
		LLM: LLM{
			Provider:    llm.ProviderOpenAI,
			Temperature: llm.DefaultTemperature,
			MaxTokens:   llm.DefaultMaxTokens,
			Timeout:     enrich.DefaultCompletionTimeout,
		},
		Thesis: enrich.DefaultThesis,
		Server: Server{Addr: ":8080"},
		Batch: Batch{
			Workers:        10,
			RequestTimeout: 2 * time.Minute,
		},
		Log: Log{Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// .env files, and the process environment.
func Load(path string) (Config, error) {
	if err := loadEnvFiles(); err != nil {
		return Config{}, err
	}
	return load(path, os.Getenv)
}

func loadEnvFiles() error {
	// godotenv.Load never overrides, so the first file to set a key wins.
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, env(getenv)); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, e env) error {
	e.setString("READER_BASE_URL", &cfg.Reader.BaseURL)
	e.setString("JINA_API_KEY", &cfg.Reader.APIKey)
	e.setString("LLM_PROVIDER", &cfg.LLM.Provider)
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	switch cfg.LLM.Provider {
	case llm.ProviderGemini:
		e.setString("GEMINI_API_KEY", &cfg.LLM.APIKey)
	default:
		e.setString("GROQ_API_KEY", &cfg.LLM.APIKey)
	}
	e.setString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	e.setString("LLM_MODEL", &cfg.LLM.Model)
	e.setString("INVESTMENT_THESIS", &cfg.Thesis)
	e.setString("ENRICHER_ADDR", &cfg.Server.Addr)
	e.setString("LOG_LEVEL", &cfg.Log.Level)

	return errors.Join(
		e.setDuration("READER_TIMEOUT", &cfg.Reader.Timeout),
		e.setInt("READER_MAX_CHARS", &cfg.Reader.MaxChars),
		e.setFloat("LLM_TEMPERATURE", &cfg.LLM.Temperature),
		e.setInt("LLM_MAX_TOKENS", &cfg.LLM.MaxTokens),
		e.setDuration("LLM_TIMEOUT", &cfg.LLM.Timeout),
		e.setInt("WORKERS", &cfg.Batch.Workers),
		e.setFloat("RATE_LIMIT_RPS", &cfg.Batch.RateLimitRPS),
		e.setDuration("REQUEST_TIMEOUT", &cfg.Batch.RequestTimeout),
		e.setBool("FAIL_FAST", &cfg.Batch.FailFast),
		e.setBool("LOG_DEVELOPMENT", &cfg.Log.Development),
	)
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown llm.provider %q (want %q or %q)", c.LLM.Provider, llm.ProviderOpenAI, llm.ProviderGemini))
	}
	if c.Reader.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("reader.timeout must be positive, got %s", c.Reader.Timeout))
	}
	if c.Reader.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("reader.max_chars must be positive, got %d", c.Reader.MaxChars))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be within 0..2, got %g", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.Batch.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("batch.rate_limit_rps must not be negative, got %g", c.Batch.RateLimitRPS))
	}
	return errors.Join(errs...)
}

// LLMConfig is the completion client configuration.
func (c Config) LLMConfig() llm.Config {
	return llm.Config{
		Provider:    c.LLM.Provider,
		APIKey:      strings.TrimSpace(c.LLM.APIKey),
		BaseURL:     strings.TrimSpace(c.LLM.BaseURL),
		Model:       strings.TrimSpace(c.LLM.Model),
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
	}.WithDefaults()
}

// ReaderConfig is the reader proxy client configuration.
func (c Config) ReaderConfig() reader.Config {
	return reader.Config{
		BaseURL: strings.TrimSpace(c.Reader.BaseURL),
		APIKey:  strings.TrimSpace(c.Reader.APIKey),
		Timeout: c.Reader.Timeout,
	}
}

// HasLLMCredential reports whether a model API key is configured.
func (c Config) HasLLMCredential() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

// CredentialEnv names the environment variable holding the active provider's key.
func (c Config) CredentialEnv() string {
	if c.LLM.Provider == llm.ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "GROQ_API_KEY"
}

type env func(string) string

func (e env) lookup(name string) (string, bool) {
	v := strings.TrimSpace(e(name))
	return v, v != ""
}

func (e env) setString(name string, dst *string) {
	if v, ok := e.lookup(name); ok {
		*dst = v
	}
}

func (e env) setInt(name string, dst *int) error {
	v, ok := e.lookup(name)
	if !ok {
		return nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", name, v, err)
	}
	*dst = out
	return nil
}

func (e env) setFloat(name string, dst *float64) error {
	v, ok := e.lookup(name)
	if !ok {
		return nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", name, v, err)
	}
	*dst = out
	return nil
}

func (e env) setDuration(name string, dst *time.Duration) error {
	v, ok := e.lookup(name)
	if !ok {
		return nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", name, v, err)
	}
	*dst = out
	return nil
}

func (e env) setBool(name string, dst *bool) error {
	v, ok := e.lookup(name)
	if !ok {
		return nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s=%q: %w", name, v, err)
	}
	*dst = out
	return nil
}
