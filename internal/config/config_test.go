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

	assert.Equal(t, "https://api.binance.com", cfg.UpstreamBaseURL)
	assert.Equal(t, 8*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, "USDT", cfg.QuoteAsset)
	assert.Equal(t, 50, cfg.MaxCandidates)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 120*time.Second, cfg.CacheShortTTL)
	assert.Equal(t, 1800*time.Second, cfg.CacheLongTTL)
	assert.Equal(t, 0.5, cfg.CompressionThreshold)
	assert.Equal(t, 40, cfg.MinExplosionScore)
	assert.Empty(t, cfg.PopularTokens)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "http://localhost:9999/")
	t.Setenv("QUOTE_ASSET", "fdusd")
	t.Setenv("TOP_N", "5")
	t.Setenv("CACHE_SHORT_TTL", "30")
	t.Setenv("CACHE_LONG_TTL", "1h")
	t.Setenv("RSI_MIN", "35.5")
	t.Setenv("POPULAR_TOKENS", "btcusdt, ethusdt,,")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999", cfg.UpstreamBaseURL)
	assert.Equal(t, "FDUSD", cfg.QuoteAsset)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 30*time.Second, cfg.CacheShortTTL)
	assert.Equal(t, time.Hour, cfg.CacheLongTTL)
	assert.Equal(t, 35.5, cfg.RSIMin)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.PopularTokens)
	assert.Equal(t, int64(-1001234567890), cfg.TelegramChatID)
	assert.Equal(t, 2, cfg.MaxRetries, "invalid values fall back to the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty quote", func(c *Config) { c.QuoteAsset = "" }, false},
		{"zero top n", func(c *Config) { c.TopN = 0 }, false},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, false},
		{"inverted rsi band", func(c *Config) { c.RSIMin, c.RSIMax = 70, 40 }, false},
		{"zero ttl", func(c *Config) { c.CacheShortTTL = 0 }, false},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, false},
		{"no retries", func(c *Config) { c.MaxRetries = 0 }, true},
		{"negative upstream rps", func(c *Config) { c.UpstreamRPS = -1 }, false},
		{"unset upstream rps uses client default", func(c *Config) { c.UpstreamRPS = 0 }, true},
		{"zero inbound rate", func(c *Config) { c.HTTPRateLimit = 0 }, false},
		{"negative inbound rate", func(c *Config) { c.HTTPRateLimit = -5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Setenv("TOP_N", "-3")

	_, err := Load()
	assert.ErrorContains(t, err, "TOP_N")
}

func TestLoad_RejectsZeroInboundRate(t *testing.T) {
	t.Setenv("HTTP_RATE_LIMIT", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "HTTP_RATE_LIMIT")
}
