package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/No25ha/Market/pkg/config"
)

// Storage backends for the persisted session.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration for the storefront daemon.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Local API
	HTTPPort      int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`
	APIToken      string   `env:"STOREFRONT_API_TOKEN"`
	CORSOrigins   []string `env:"STOREFRONT_CORS_ORIGINS" envSeparator:","`
	PprofCIDRs    []string `env:"STOREFRONT_PPROF_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
	ReturnURL     string   `env:"STOREFRONT_RETURN_URL" envDefault:"http://localhost:8090"`
	CatalogMaxAge int      `env:"STOREFRONT_CATALOG_MAX_AGE" envDefault:"60"`

	// Upstream storefront API
	APIBaseURL     string        `env:"STOREFRONT_API_BASE_URL" envDefault:"https://ecommerce.routemisr.com"`
	HTTPTimeout    time.Duration `env:"STOREFRONT_HTTP_TIMEOUT" envDefault:"30s"`
	RateLimitRPS   float64       `env:"STOREFRONT_RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int           `env:"STOREFRONT_RATE_LIMIT_BURST" envDefault:"20"`

	// Retry policy for store operations
	RetryMaxAttempts  int           `env:"STOREFRONT_RETRY_MAX_ATTEMPTS" envDefault:"5"`
	RetryInitialDelay time.Duration `env:"STOREFRONT_RETRY_INITIAL_DELAY" envDefault:"1500ms"`
	RetryMaxJitter    time.Duration `env:"STOREFRONT_RETRY_MAX_JITTER" envDefault:"500ms"`

	// Circuit breaker
	BreakerEnabled      bool          `env:"STOREFRONT_BREAKER_ENABLED" envDefault:"true"`
	BreakerTimeout      time.Duration `env:"STOREFRONT_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"STOREFRONT_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinRequests  uint32        `env:"STOREFRONT_BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Session storage
	Storage     string `env:"STOREFRONT_STORAGE" envDefault:"file"`
	StoragePath string `env:"STOREFRONT_STORAGE_PATH" envDefault:".storefront/session.json"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass   string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB     int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix string `env:"STOREFRONT_REDIS_PREFIX" envDefault:"storefront:"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("STOREFRONT_API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("STOREFRONT_RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.CatalogMaxAge < 0 {
		return fmt.Errorf("STOREFRONT_CATALOG_MAX_AGE must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("STOREFRONT_RATE_LIMIT_RPS must not be negative")
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		return fmt.Errorf("STOREFRONT_BREAKER_FAILURE_RATIO must be in (0.0, 1.0]")
	}
	switch c.Storage {
	case StorageFile:
		if c.StoragePath == "" {
			return fmt.Errorf("STOREFRONT_STORAGE_PATH is required for file storage")
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STOREFRONT_STORAGE must be one of file, redis, memory, got %q", c.Storage)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}
