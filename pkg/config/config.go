package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Sportradar
	SportradarAPIKey   string        `mapstructure:"SPORTRADAR_API_KEY"`
	SportradarBaseURL  string        `mapstructure:"SPORTRADAR_BASE_URL"`
	ExternalAPITimeout time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`

	// Rate limiting
	RateLimitMinInterval time.Duration `mapstructure:"RATE_LIMIT_MIN_INTERVAL"`
	RateLimitMaxRetries  int           `mapstructure:"RATE_LIMIT_MAX_RETRIES"`
	RateLimitBackoffUnit time.Duration `mapstructure:"RATE_LIMIT_BACKOFF_UNIT"`
	RateLimitMaxBackoff  int           `mapstructure:"RATE_LIMIT_MAX_BACKOFF"`

	// Tournament cache
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	RefreshWindow string        `mapstructure:"REFRESH_WINDOW"`
	RoundPolicy   string        `mapstructure:"ROUND_POLICY"`

	// Circuit breaker
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`
	CircuitBreakerTimeout   time.Duration `mapstructure:"CIRCUIT_BREAKER_TIMEOUT"`

	// Snapshot persistence
	SnapshotStore string `mapstructure:"SNAPSHOT_STORE"` // "none", "redis", "postgres", "sqlite"
	RedisURL      string `mapstructure:"REDIS_URL"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`

	// Background jobs
	EnableCacheWarmer   bool   `mapstructure:"ENABLE_CACHE_WARMER"`
	CacheWarmerSchedule string `mapstructure:"CACHE_WARMER_SCHEDULE"`

	// Pool bundle, empty uses the embedded default
	PoolFile string `mapstructure:"POOL_FILE"`
}

// Snapshot store kinds
const (
	SnapshotStoreNone     = "none"
	SnapshotStoreRedis    = "redis"
	SnapshotStorePostgres = "postgres"
	SnapshotStoreSQLite   = "sqlite"
)

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	// Set defaults
	v.SetDefault("PORT", "5002")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("LOG_FORMAT", "") // json outside development
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SPORTRADAR_API_KEY", "")
	v.SetDefault("SPORTRADAR_BASE_URL", "https://api.sportradar.com/golf/trial/pga/v3/en")
	v.SetDefault("EXTERNAL_API_TIMEOUT", "10s")

	v.SetDefault("RATE_LIMIT_MIN_INTERVAL", "500ms")
	v.SetDefault("RATE_LIMIT_MAX_RETRIES", 2)
	v.SetDefault("RATE_LIMIT_BACKOFF_UNIT", "1s")
	v.SetDefault("RATE_LIMIT_MAX_BACKOFF", 30) // in backoff units

	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("REFRESH_WINDOW", "") // always open
	v.SetDefault("ROUND_POLICY", "exact")

	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5) // Fail after 5 consecutive failures
	v.SetDefault("CIRCUIT_BREAKER_TIMEOUT", "60s")

	v.SetDefault("SNAPSHOT_STORE", SnapshotStoreNone)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("DATABASE_URL", "")

	v.SetDefault("ENABLE_CACHE_WARMER", false)
	v.SetDefault("CACHE_WARMER_SCHEDULE", "@every 5m")
	v.SetDefault("POOL_FILE", "")

	// Read from environment
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	config.CorsOrigins = nil
	if corsStr := v.GetString("CORS_ORIGINS"); corsStr != "" {
		for _, origin := range strings.Split(corsStr, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				config.CorsOrigins = append(config.CorsOrigins, origin)
			}
		}
	}

	config.LogFormat = strings.ToLower(strings.TrimSpace(config.LogFormat))
	config.SnapshotStore = strings.ToLower(strings.TrimSpace(config.SnapshotStore))
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.SnapshotStore {
	case "", SnapshotStoreNone, SnapshotStoreRedis:
	case SnapshotStorePostgres, SnapshotStoreSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for snapshot store %q", c.SnapshotStore)
		}
	default:
		return fmt.Errorf("unknown snapshot store %q", c.SnapshotStore)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}
	if c.RateLimitMaxRetries < 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_RETRIES must not be negative")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}
