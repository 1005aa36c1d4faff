package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the wellness service.
// Environment variables are parsed from the WELLNESS_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver for the collection store
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Collection store locations
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/wellness.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Embedding configuration
	EmbedProvider string `envconfig:"EMBED_PROVIDER" default:"ollama"`
	EmbedModel    string `envconfig:"EMBED_MODEL" default:"nomic-embed-text"`
	OllamaURL     string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`

	// Chat model configuration (OpenAI-compatible endpoint)
	ChatBaseURL     string  `envconfig:"CHAT_BASE_URL" default:"https://api.openai.com/v1"`
	ChatAPIKey      string  `envconfig:"CHAT_API_KEY" default:""`
	ChatModel       string  `envconfig:"CHAT_MODEL" default:"gpt-3.5-turbo"`
	ChatTemperature float64 `envconfig:"CHAT_TEMPERATURE" default:"0.7"`
	ChatMaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"1000"`

	// Short-term conversation buffer token budget
	MaxTokenLimit int `envconfig:"MAX_TOKEN_LIMIT" default:"2000"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables are prefixed with WELLNESS_
// Example: WELLNESS_HTTP_PORT, WELLNESS_EMBED_MODEL
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("WELLNESS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Str("chat_model", cfg.ChatModel).
		Int("max_token_limit", cfg.MaxTokenLimit).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	cfg := &Config{
		Environment:   EnvTesting,
		BuildTarget:   "local",
		DBDriver:      "sqlite",
		HTTPPort:      8080,
		SQLitePath:    "", // tests pick a temp path
		EmbedProvider: "ollama",
		EmbedModel:    "nomic-embed-text",
		OllamaURL:     "http://localhost:11434",
		ChatModel:     "gpt-3.5-turbo",
		MaxTokenLimit: 2000,
	}
	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
