// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/neoledger/neo-export-backend/internal/domain/matcher"
	"github.com/neoledger/neo-export-backend/internal/domain/transaction"
)

// Config represents the entire application configuration.
type Config struct {
	Neo           NeoConfig           `yaml:"neo"`
	Export        ExportConfig        `yaml:"export"`
	Storage       StorageConfig       `yaml:"storage"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// NeoConfig holds Neo Financial API settings.
type NeoConfig struct {
	BaseURL       string `yaml:"base_url"`
	PageSize      int    `yaml:"page_size"`
	SessionCookie string `yaml:"session_cookie"`
}

// ExportConfig holds reconciliation and export settings.
type ExportConfig struct {
	Year                int      `yaml:"year"`
	OutputDir           string   `yaml:"output_dir"`
	ExcludedCategories  []string `yaml:"excluded_categories"`
	TimeTiers           []int    `yaml:"time_tiers"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
	AnomalyMultiplier   float64  `yaml:"anomaly_multiplier"`
}

// MatcherConfig maps export tuning onto matcher settings, falling back to
// the reference defaults for anything left unset.
func (e ExportConfig) MatcherConfig() matcher.Config {
	cfg := matcher.DefaultConfig()
	if len(e.TimeTiers) > 0 {
		cfg.TimeTiers = e.TimeTiers
	}
	if e.SimilarityThreshold > 0 {
		cfg.SimilarityThreshold = e.SimilarityThreshold
	}
	if e.AnomalyMultiplier > 0 {
		cfg.AnomalyMultiplier = e.AnomalyMultiplier
	}
	return cfg
}

// Exclusions converts the configured category names into the ledger
// exclusion set. Returns nil when unconfigured; the pipeline then applies
// the default exclusions.
func (e ExportConfig) Exclusions() []transaction.Category {
	if len(e.ExcludedCategories) == 0 {
		return nil
	}
	excluded := make([]transaction.Category, 0, len(e.ExcludedCategories))
	for _, name := range e.ExcludedCategories {
		excluded = append(excluded, transaction.Category(name))
	}
	return excluded
}

// StorageConfig holds database configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text", "json", or "bracket"
	Color  bool   `yaml:"color"`
}

// Load reads and parses the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${NEO_SESSION_COOKIE})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() *Config {
	return &Config{
		Neo: NeoConfig{
			BaseURL:       getEnv("NEO_BASE_URL", ""),
			PageSize:      getEnvInt("NEO_PAGE_SIZE", 1000),
			SessionCookie: os.Getenv("NEO_SESSION_COOKIE"),
		},
		Export: ExportConfig{
			Year:      getEnvInt("EXPORT_YEAR", time.Now().UTC().Year()-1),
			OutputDir: getEnv("EXPORT_OUTPUT_DIR", "exports"),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("EXPORT_DB_PATH", "neo_export.db"),
		},
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables.
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables.
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
