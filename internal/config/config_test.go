package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.HTTPPort)
	assert.Equal(t, 60, cfg.CatalogMaxAge)
	assert.Equal(t, "https://ecommerce.routemisr.com", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5, cfg.RetryMaxAttempts)
	assert.Equal(t, 1500*time.Millisecond, cfg.RetryInitialDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryMaxJitter)
	assert.True(t, cfg.BreakerEnabled)
	assert.Equal(t, uint32(5), cfg.BreakerMinRequests)
	assert.Equal(t, StorageFile, cfg.Storage)
	assert.Equal(t, ".storefront/session.json", cfg.StoragePath)
	assert.Equal(t, "storefront:", cfg.RedisPrefix)
	assert.Equal(t, []string{"127.0.0.1/32", "::1/128"}, cfg.PprofCIDRs)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Empty(t, cfg.APIToken)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoad_ListsAreCommaSeparated(t *testing.T) {
	t.Setenv("STOREFRONT_CORS_ORIGINS", "http://localhost:3000,https://shop.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.CORSOrigins)
}

func TestLoad_RedisStorage(t *testing.T) {
	t.Setenv("STOREFRONT_STORAGE", "redis")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"port zero", "STOREFRONT_HTTP_PORT", "0", "invalid HTTP port"},
		{"relative base url", "STOREFRONT_API_BASE_URL", "/api", "must be an absolute URL"},
		{"no attempts", "STOREFRONT_RETRY_MAX_ATTEMPTS", "0", "STOREFRONT_RETRY_MAX_ATTEMPTS"},
		{"negative rate", "STOREFRONT_RATE_LIMIT_RPS", "-1", "STOREFRONT_RATE_LIMIT_RPS"},
		{"failure ratio", "STOREFRONT_BREAKER_FAILURE_RATIO", "1.5", "STOREFRONT_BREAKER_FAILURE_RATIO"},
		{"unknown storage", "STOREFRONT_STORAGE", "s3", "STOREFRONT_STORAGE must be one of"},
		{"sample rate", "TRACING_SAMPLE_RATE", "2.0", "TRACING_SAMPLE_RATE must be between 0.0 and 1.0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_UnparseableDuration(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_TIMEOUT", "soon")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}
