// Package common provides shared utilities for stockdash
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for stockdash
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Clients     ClientsConfig    `toml:"clients"`
	Cache       CacheConfig      `toml:"cache"`
	Refresh     RefreshConfig    `toml:"refresh"`
	Reference   ReferenceConfig  `toml:"reference"`
	Pipelines   []PipelineConfig `toml:"pipelines"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Finnhub FinnhubConfig `toml:"finnhub"`
}

// FinnhubConfig holds Finnhub API configuration.
// RateLimit is requests per minute across all endpoints.
type FinnhubConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FinnhubConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// CacheConfig selects and configures the cache store backend.
// Backend is one of "redis", "surrealdb", "badger" or "none".
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Redis     RedisConfig   `toml:"redis"`
	SurrealDB SurrealConfig `toml:"surrealdb"`
	Badger    BadgerConfig  `toml:"badger"`
}

// RedisConfig holds connection settings for a Redis-compatible KV store.
// URL takes precedence over Address when both are set.
type RedisConfig struct {
	URL      string `toml:"url"`
	Address  string `toml:"address"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Configured reports whether enough connection detail is present to dial.
func (c *RedisConfig) Configured() bool {
	return c.URL != "" || c.Address != ""
}

// SurrealConfig holds SurrealDB connection settings
type SurrealConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// Configured reports whether address and credentials are present.
func (c *SurrealConfig) Configured() bool {
	return c.Address != "" && c.Username != "" && c.Password != ""
}

// BadgerConfig holds the embedded store directory
type BadgerConfig struct {
	Path string `toml:"path"`
}

// RefreshConfig controls background refresh and the cron refresh endpoint.
type RefreshConfig struct {
	Interval        string `toml:"interval"`
	MarketHoursOnly bool   `toml:"market_hours_only"`
	WarmOnStart     bool   `toml:"warm_on_start"`
	Secret          string `toml:"secret"`
	SecretHash      string `toml:"secret_hash"` // bcrypt hash of the secret
}

// GetInterval parses and returns the refresh interval
func (c *RefreshConfig) GetInterval() time.Duration {
	return parseDuration(c.Interval, 10*time.Minute)
}

// HasSecret reports whether the refresh endpoint is protected.
func (c *RefreshConfig) HasSecret() bool {
	return c.Secret != "" || c.SecretHash != ""
}

// ReferenceConfig points at an optional YAML file replacing the embedded dataset.
type ReferenceConfig struct {
	Path string `toml:"path"`
}

// PipelineConfig describes one stock-list pipeline (one universe).
type PipelineConfig struct {
	Universe   string `toml:"universe"`
	CacheKey   string `toml:"cache_key"`
	TTL        string `toml:"ttl"`
	BatchSize  int    `toml:"batch_size"`
	BatchDelay string `toml:"batch_delay"`
	MaxSymbols int    `toml:"max_symbols"`
}

// GetTTL parses and returns the cache TTL
func (c *PipelineConfig) GetTTL() time.Duration {
	return parseDuration(c.TTL, FreshnessMarketList)
}

// GetBatchDelay parses and returns the inter-batch delay
func (c *PipelineConfig) GetBatchDelay() time.Duration {
	return parseDuration(c.BatchDelay, 12*time.Second)
}

// GetCacheKey returns the configured key or stocks:{universe}.
func (c *PipelineConfig) GetCacheKey() string {
	if c.CacheKey != "" {
		return c.CacheKey
	}
	return "stocks:" + c.Universe
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults.
// The two pipelines stay under Finnhub's free tier of 60 calls/minute:
// 5 symbols x 2 calls every 12s is 50 calls/minute.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			Finnhub: FinnhubConfig{
				BaseURL:   "https://finnhub.io/api/v1",
				RateLimit: 60,
				Timeout:   "30s",
			},
		},
		Cache: CacheConfig{
			Backend: "redis",
			SurrealDB: SurrealConfig{
				Namespace: "stockdash",
				Database:  "cache",
			},
			Badger: BadgerConfig{Path: "data/cache"},
		},
		Refresh: RefreshConfig{
			Interval:        "10m",
			MarketHoursOnly: true,
			WarmOnStart:     true,
		},
		Pipelines: []PipelineConfig{
			{
				Universe:   "market",
				CacheKey:   "stocks:market",
				TTL:        "10m",
				BatchSize:  5,
				BatchDelay: "12s",
				MaxSymbols: 30,
			},
			{
				Universe:   "sp500",
				CacheKey:   "stocks:sp500",
				TTL:        "1h",
				BatchSize:  5,
				BatchDelay: "12s",
				MaxSymbols: 100,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "./logs/stockdash.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// A file that declares [[pipelines]] replaces the list rather than extending it
		prev := config.Pipelines
		config.Pipelines = nil
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if len(config.Pipelines) == 0 {
			config.Pipelines = prev
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKDASH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKDASH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKDASH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STOCKDASH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := firstEnv("FINNHUB_API_KEY", "STOCKDASH_FINNHUB_API_KEY"); v != "" {
		config.Clients.Finnhub.APIKey = v
	}

	if v := firstEnv("STOCKDASH_CRON_SECRET", "CRON_SECRET"); v != "" {
		config.Refresh.Secret = v
	}

	// Cache
	if v := os.Getenv("STOCKDASH_CACHE_BACKEND"); v != "" {
		config.Cache.Backend = strings.ToLower(v)
	}
	if v := firstEnv("KV_URL", "REDIS_URL"); v != "" {
		config.Cache.Redis.URL = v
	}
	if v := os.Getenv("STOCKDASH_SURREAL_ADDRESS"); v != "" {
		config.Cache.SurrealDB.Address = v
	}
	if v := os.Getenv("STOCKDASH_SURREAL_USERNAME"); v != "" {
		config.Cache.SurrealDB.Username = v
	}
	if v := os.Getenv("STOCKDASH_SURREAL_PASSWORD"); v != "" {
		config.Cache.SurrealDB.Password = v
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateRequired returns the names of required settings that are missing.
// The Finnhub key has no built-in default.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Clients.Finnhub.APIKey == "" {
		missing = append(missing, "clients.finnhub.api_key")
	}
	return missing
}
