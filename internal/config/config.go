// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Port        string `env:"PORT" envDefault:"8000"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://confirmation.db"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	Gemini     GeminiConfig     `envPrefix:"GEMINI_"`
	Suggestion SuggestionConfig `envPrefix:"SUGGESTION_"`
	Processing ProcessingConfig `envPrefix:"PROCESSING_"`
	Log        LogConfig        `envPrefix:"LOG_"`
	Session    SessionConfig

	UploadMaxBytes    int64 `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	WorkerConcurrency int   `env:"WORKER_CONCURRENCY" envDefault:"4"`
}

// GeminiConfig holds the generative model credentials. An empty APIKey
// disables remote suggestions.
type GeminiConfig struct {
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"MODEL" envDefault:"gemini-2.5-flash"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"20s"`
}

// SuggestionConfig tunes the suggestion engine
type SuggestionConfig struct {
	CacheTTL   time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	PromptPath string        `env:"PROMPT_PATH"`
}

// ProcessingConfig tunes the background confirmation processing job
type ProcessingConfig struct {
	Delay time.Duration `env:"DELAY" envDefault:"15s"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type SessionConfig struct {
	Lifetime     time.Duration `env:"SESSION_LIFETIME" envDefault:"12h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// Load reads an optional .env file and then environment variables.
// Files that do not exist are skipped; with no arguments ".env" is tried.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HasGemini returns true if a Gemini credential is configured
func (c Config) HasGemini() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

// Driver reports which database driver DatabaseURL selects.
func (c Config) Driver() string {
	driver, _ := splitDatabaseURL(c.DatabaseURL)
	return driver
}

// Validate checks values env parsing cannot express
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if driver, _ := splitDatabaseURL(c.DatabaseURL); driver == "" {
		return fmt.Errorf("DATABASE_URL %q: unsupported scheme (want postgres:// or sqlite://)", c.DatabaseURL)
	}
	if c.Suggestion.CacheTTL <= 0 {
		return fmt.Errorf("SUGGESTION_CACHE_TTL must be positive, got %s", c.Suggestion.CacheTTL)
	}
	if c.Processing.Delay < 0 {
		return fmt.Errorf("PROCESSING_DELAY must not be negative, got %s", c.Processing.Delay)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes)
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.WorkerConcurrency)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// DataSource returns the driver-specific connection string.
func (c Config) DataSource() string {
	_, dsn := splitDatabaseURL(c.DatabaseURL)
	return dsn
}

func splitDatabaseURL(u string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DriverPostgres, u
	case strings.HasPrefix(u, "sqlite://"):
		return DriverSQLite, strings.TrimPrefix(u, "sqlite://")
	case strings.HasPrefix(u, "file:"):
		return DriverSQLite, u
	}
	return "", ""
}
