package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every tunable of the aggregation service. Values come from
// the environment (optionally seeded by a .env file) with sane defaults.
type Config struct {
	// HTTP server
	ListenAddr string

	// Pipeline tunables
	RecencyWindowDays int
	PerCategoryLimit  int
	MaxPerSource      int
	ProviderTimeout   time.Duration
	FetchConcurrency  int

	// Caching
	AggregateCacheTTL time.Duration
	URLCacheTTL       time.Duration
	RedisAddr         string
	URLCachePath      string

	// Config files
	ProvidersFile  string
	PublishersFile string
	TaxonomyFile   string

	// Channel directory (optional subsystem)
	PostgresDSN     string
	ChannelCacheTTL time.Duration

	Debug bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TAAZA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("recency_window_days", 7)
	v.SetDefault("per_category_limit", 10)
	v.SetDefault("max_per_source", 2)
	v.SetDefault("provider_timeout", "15s")
	v.SetDefault("fetch_concurrency", 8)
	v.SetDefault("aggregate_cache_ttl", "10m")
	v.SetDefault("url_cache_ttl", "30m")
	v.SetDefault("url_cache_path", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("providers_file", "configs/providers.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("taxonomy_file", "")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("channel_cache_ttl", "1h")
	v.SetDefault("debug", false)

	cfg := &Config{
		ListenAddr:        strings.TrimSpace(v.GetString("listen_addr")),
		RecencyWindowDays: v.GetInt("recency_window_days"),
		PerCategoryLimit:  v.GetInt("per_category_limit"),
		MaxPerSource:      v.GetInt("max_per_source"),
		ProviderTimeout:   v.GetDuration("provider_timeout"),
		FetchConcurrency:  v.GetInt("fetch_concurrency"),
		AggregateCacheTTL: v.GetDuration("aggregate_cache_ttl"),
		URLCacheTTL:       v.GetDuration("url_cache_ttl"),
		URLCachePath:      strings.TrimSpace(v.GetString("url_cache_path")),
		RedisAddr:         strings.TrimSpace(v.GetString("redis_addr")),
		ProvidersFile:     strings.TrimSpace(v.GetString("providers_file")),
		PublishersFile:    strings.TrimSpace(v.GetString("publishers_file")),
		TaxonomyFile:      strings.TrimSpace(v.GetString("taxonomy_file")),
		PostgresDSN:       strings.TrimSpace(v.GetString("postgres_dsn")),
		ChannelCacheTTL:   v.GetDuration("channel_cache_ttl"),
		Debug:             v.GetBool("debug"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the loaded values can drive the pipeline.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is empty")
	}
	if c.RecencyWindowDays <= 0 {
		return fmt.Errorf("recency_window_days must be positive, got %d", c.RecencyWindowDays)
	}
	if c.PerCategoryLimit <= 0 {
		return fmt.Errorf("per_category_limit must be positive, got %d", c.PerCategoryLimit)
	}
	if c.MaxPerSource <= 0 {
		return fmt.Errorf("max_per_source must be positive, got %d", c.MaxPerSource)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("provider_timeout must be positive, got %s", c.ProviderTimeout)
	}
	if c.AggregateCacheTTL <= 0 {
		return fmt.Errorf("aggregate_cache_ttl must be positive, got %s", c.AggregateCacheTTL)
	}
	if c.URLCacheTTL <= 0 {
		return fmt.Errorf("url_cache_ttl must be positive, got %s", c.URLCacheTTL)
	}
	return nil
}
