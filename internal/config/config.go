// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported persistent store drivers.
const (
	StoreDisabled = "disabled"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// DefaultWarmTopics are the trending topics kept warm when WARM_TOPICS is unset.
var DefaultWarmTopics = []string{
	"AI Agents",
	"LLM Tools",
	"React Libraries",
	"Next.js Starters",
	"Rust Utilities",
	"Python Automation",
	"Cybersecurity",
	"Web3",
	"SaaS Boilerplates",
}

// Config holds all configuration for the application.
type Config struct {
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	HTTPAddr           string        `mapstructure:"HTTP_ADDR"`
	GithubToken        string        `mapstructure:"GITHUB_TOKEN"`
	GithubAPIURL       string        `mapstructure:"GITHUB_API_URL"`
	UpstreamRatePerSec float64       `mapstructure:"UPSTREAM_RATE_PER_SEC"`
	StoreDriver        string        `mapstructure:"STORE_DRIVER"`
	DBURL              string        `mapstructure:"DB_URL"`
	SQLitePath         string        `mapstructure:"SQLITE_PATH"`
	MemoryCacheSize    int           `mapstructure:"MEMORY_CACHE_SIZE"`
	MemoryCacheTTL     time.Duration `mapstructure:"MEMORY_CACHE_TTL"`
	FreshWindow        time.Duration `mapstructure:"FRESH_WINDOW"`
	StaleWindow        time.Duration `mapstructure:"STALE_WINDOW"`
	WarmTopics         []string      `mapstructure:"WARM_TOPICS"`
	WarmInterval       time.Duration `mapstructure:"WARM_INTERVAL"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_URL", "")
	v.SetDefault("UPSTREAM_RATE_PER_SEC", 1.0)
	v.SetDefault("STORE_DRIVER", "")
	v.SetDefault("DB_URL", "")
	v.SetDefault("SQLITE_PATH", "sparks.db")
	v.SetDefault("MEMORY_CACHE_SIZE", 100)
	v.SetDefault("MEMORY_CACHE_TTL", "6h")
	v.SetDefault("FRESH_WINDOW", "6h")
	v.SetDefault("STALE_WINDOW", "24h")
	v.SetDefault("WARM_TOPICS", DefaultWarmTopics)
	v.SetDefault("WARM_INTERVAL", "1h")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if c.StoreDriver == "" {
		c.StoreDriver = StoreDisabled
		if c.DBURL != "" {
			c.StoreDriver = StorePostgres
		}
	}

	switch c.StoreDriver {
	case StoreDisabled:
	case StorePostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required when STORE_DRIVER is postgres")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q, expected one of %s, %s, %s", c.StoreDriver, StorePostgres, StoreSQLite, StoreDisabled)
	}

	if c.FreshWindow <= 0 || c.StaleWindow < c.FreshWindow {
		return errors.New("FRESH_WINDOW must be positive and no longer than STALE_WINDOW")
	}
	if c.MemoryCacheSize <= 0 {
		return errors.New("MEMORY_CACHE_SIZE must be positive")
	}
	if c.MemoryCacheTTL <= 0 {
		return errors.New("MEMORY_CACHE_TTL must be positive")
	}
	if c.UpstreamRatePerSec <= 0 {
		return errors.New("UPSTREAM_RATE_PER_SEC must be positive")
	}
	if c.WarmInterval < 0 {
		return errors.New("WARM_INTERVAL must not be negative")
	}
	return nil
}
