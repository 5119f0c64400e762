package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for nlp-analytics.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL sink)
	Database DatabaseConfig `yaml:"database"`

	// LLM generator configuration (OpenAI-compatible endpoint)
	LLM LLMConfig `yaml:"llm"`

	// CSV analysis configuration
	Analyze AnalyzeConfig `yaml:"analyze"`

	// Query execution configuration
	Query QueryConfig `yaml:"query"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"analytics"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"analytics"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`

	// StatementTimeoutSeconds bounds every statement executed against the
	// sink so a pathological generated query cannot hang a request.
	StatementTimeoutSeconds int `yaml:"statement_timeout_seconds" env:"PG_STATEMENT_TIMEOUT_SECONDS" env-default:"30"`
}

// LLMConfig holds configuration for the text-generation endpoint.
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible endpoint, e.g. Ollama's /v1 surface.
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL" env-default:"http://localhost:11434/v1"`
	Model   string `yaml:"model" env:"LLM_MODEL" env-default:"sqlcoder:7b"`
	APIKey  string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML, optional for local endpoints

	// RequestTimeoutSeconds bounds each generation attempt.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"LLM_REQUEST_TIMEOUT_SECONDS" env-default:"60"`

	// MaxRetries is the number of additional attempts after a timeout.
	// Only timeouts are retried; connection failures are surfaced immediately.
	MaxRetries int `yaml:"max_retries" env:"LLM_MAX_RETRIES" env-default:"2"`
}

// AnalyzeConfig holds CSV analysis bounds.
type AnalyzeConfig struct {
	// PreviewLines is how far into a file header detection looks.
	PreviewLines int `yaml:"preview_lines" env:"ANALYZE_PREVIEW_LINES" env-default:"20"`
	// SampleSize is how many values per column type inference samples.
	SampleSize int `yaml:"sample_size" env:"ANALYZE_SAMPLE_SIZE" env-default:"1000"`
	// MaxUploadBytes caps accepted file size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"ANALYZE_MAX_UPLOAD_BYTES" env-default:"104857600"`
}

// QueryConfig holds query normalization and execution settings.
type QueryConfig struct {
	// DefaultRowLimit is appended to generated SQL that carries no LIMIT.
	DefaultRowLimit int `yaml:"default_row_limit" env:"QUERY_DEFAULT_ROW_LIMIT" env-default:"100"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// If config.yaml does not exist, configuration comes from environment variables
// and defaults alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate rejects configurations the rest of the service cannot operate under.
func (c *Config) validate() error {
	if c.Analyze.PreviewLines < 1 {
		return fmt.Errorf("analyze.preview_lines must be at least 1, got %d", c.Analyze.PreviewLines)
	}
	if c.Analyze.SampleSize < 1 {
		return fmt.Errorf("analyze.sample_size must be at least 1, got %d", c.Analyze.SampleSize)
	}
	if c.Query.DefaultRowLimit < 1 {
		return fmt.Errorf("query.default_row_limit must be at least 1, got %d", c.Query.DefaultRowLimit)
	}
	if c.Database.StatementTimeoutSeconds < 1 {
		return fmt.Errorf("database.statement_timeout_seconds must be at least 1, got %d", c.Database.StatementTimeoutSeconds)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// StatementTimeout returns the statement timeout as a duration.
func (c *DatabaseConfig) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutSeconds) * time.Second
}

// RequestTimeout returns the generation request timeout as a duration.
func (c *LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
