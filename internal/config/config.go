package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	// Upstream market data
	UpstreamBaseURL   string        `env:"UPSTREAM_BASE_URL" envDefault:"https://api.binance.com"`
	UpstreamAPIKey    string        `env:"UPSTREAM_API_KEY" envDefault:""`
	UpstreamAPISecret string        `env:"UPSTREAM_API_SECRET" envDefault:""` // reserved, public endpoints only
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"8s"`
	MaxRetries        int           `env:"MAX_RETRIES" envDefault:"2"`
	RetryDelay        time.Duration `env:"RETRY_DELAY" envDefault:"1s"`
	UpstreamRPS       float64       `env:"UPSTREAM_RPS" envDefault:"15"`
	UpstreamBurst     int           `env:"UPSTREAM_BURST" envDefault:"30"`

	// Universe
	QuoteAsset      string   `env:"QUOTE_ASSET" envDefault:"USDT"`
	PopularTokens   []string `env:"POPULAR_TOKENS"`
	MaxCandidates   int      `env:"MAX_CANDIDATES" envDefault:"50"`
	TopN            int      `env:"TOP_N" envDefault:"10"`
	Concurrency     int      `env:"CONCURRENCY" envDefault:"8"`
	NewListingLimit int      `env:"NEW_LISTING_LIMIT" envDefault:"30"`

	// Cache
	CacheShortTTL time.Duration `env:"CACHE_SHORT_TTL" envDefault:"120s"`
	CacheLongTTL  time.Duration `env:"CACHE_LONG_TTL" envDefault:"1800s"`

	// Indicators
	RSIPeriod            int     `env:"RSI_PERIOD" envDefault:"14"`
	RSIInterval          string  `env:"RSI_INTERVAL" envDefault:"1h"`
	RSIMin               float64 `env:"RSI_MIN" envDefault:"40"`
	RSIMax               float64 `env:"RSI_MAX" envDefault:"70"`
	VolumeLookbackDays   int     `env:"VOLUME_LOOKBACK_DAYS" envDefault:"7"`
	VolatilityInterval   string  `env:"VOLATILITY_INTERVAL" envDefault:"15m"`
	VolatilityWindow     int     `env:"VOLATILITY_WINDOW" envDefault:"20"`
	VolatilityFallback   float64 `env:"VOLATILITY_FALLBACK" envDefault:"10"`
	CompressionThreshold float64 `env:"COMPRESSION_THRESHOLD" envDefault:"0.5"`

	// Scoring
	ExplosionVolumeFloor      float64 `env:"EXPLOSION_VOLUME_FLOOR" envDefault:"1000000"`
	AlertVolumeFloor          float64 `env:"ALERT_VOLUME_FLOOR" envDefault:"300000"`
	MinChange5m               float64 `env:"MIN_CHANGE_5M" envDefault:"2"`
	MinChange1h               float64 `env:"MIN_CHANGE_1H" envDefault:"3"`
	MinVolumeRatio            float64 `env:"MIN_VOLUME_RATIO" envDefault:"1.5"`
	MinExplosionScore         int     `env:"MIN_EXPLOSION_SCORE" envDefault:"40"`
	MinAlertScore             int     `env:"MIN_ALERT_SCORE" envDefault:"40"`
	ExplosionCompressionBonus float64 `env:"EXPLOSION_COMPRESSION_BONUS" envDefault:"10"`
	AlertCompressionBonus     float64 `env:"ALERT_COMPRESSION_BONUS" envDefault:"25"`
	NewListingBonus           float64 `env:"NEW_LISTING_BONUS" envDefault:"15"`
	TimeBonus                 float64 `env:"TIME_BONUS" envDefault:"5"`

	// Recommendation multipliers
	ExplosionTargetMultiplier float64 `env:"EXPLOSION_TARGET_MULTIPLIER" envDefault:"1.25"`
	ExplosionStopMultiplier   float64 `env:"EXPLOSION_STOP_MULTIPLIER" envDefault:"0.95"`
	AlertTargetMultiplier     float64 `env:"ALERT_TARGET_MULTIPLIER" envDefault:"1.12"`
	AlertStopMultiplier       float64 `env:"ALERT_STOP_MULTIPLIER" envDefault:"0.92"`

	// HTTP server
	HTTPAddr      string  `env:"HTTP_ADDR" envDefault:":3000"`
	HTTPRateLimit float64 `env:"HTTP_RATE_LIMIT" envDefault:"5"` // requests per second per client
	HTTPBurst     int     `env:"HTTP_BURST" envDefault:"20"`

	// Notifier
	ScreenerURL    string        `env:"SCREENER_URL" envDefault:"http://localhost:3000"`
	TelegramToken  string        `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64         `env:"TELEGRAM_CHAT_ID"`
	NotifyMinScore int           `env:"NOTIFY_MIN_SCORE" envDefault:"60"`
	NotifyCooldown time.Duration `env:"NOTIFY_COOLDOWN" envDefault:"30m"`
	NotifySchedule string        `env:"NOTIFY_SCHEDULE" envDefault:"@every 1m"`
	DBHost         string        `env:"DB_HOST"`
	DBPort         string        `env:"DB_PORT" envDefault:"5432"`
	DBUser         string        `env:"DB_USER"`
	DBPassword     string        `env:"DB_PASSWORD"`
	DBName         string        `env:"DB_NAME"`
	DBSSLMode      string        `env:"DB_SSLMODE" envDefault:"disable"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Default returns the configuration used when no environment overrides are set
func Default() *Config {
	return &Config{
		UpstreamBaseURL:           "https://api.binance.com",
		RequestTimeout:            8 * time.Second,
		MaxRetries:                2,
		RetryDelay:                time.Second,
		UpstreamRPS:               15,
		UpstreamBurst:             30,
		QuoteAsset:                "USDT",
		MaxCandidates:             50,
		TopN:                      10,
		Concurrency:               8,
		NewListingLimit:           30,
		CacheShortTTL:             120 * time.Second,
		CacheLongTTL:              1800 * time.Second,
		RSIPeriod:                 14,
		RSIInterval:               "1h",
		RSIMin:                    40,
		RSIMax:                    70,
		VolumeLookbackDays:        7,
		VolatilityInterval:        "15m",
		VolatilityWindow:          20,
		VolatilityFallback:        10,
		CompressionThreshold:      0.5,
		ExplosionVolumeFloor:      1_000_000,
		AlertVolumeFloor:          300_000,
		MinChange5m:               2,
		MinChange1h:               3,
		MinVolumeRatio:            1.5,
		MinExplosionScore:         40,
		MinAlertScore:             40,
		ExplosionCompressionBonus: 10,
		AlertCompressionBonus:     25,
		NewListingBonus:           15,
		TimeBonus:                 5,
		ExplosionTargetMultiplier: 1.25,
		ExplosionStopMultiplier:   0.95,
		AlertTargetMultiplier:     1.12,
		AlertStopMultiplier:       0.92,
		HTTPAddr:                  ":3000",
		HTTPRateLimit:             5,
		HTTPBurst:                 20,
		ScreenerURL:               "http://localhost:3000",
		NotifyMinScore:            60,
		NotifyCooldown:            30 * time.Minute,
		NotifySchedule:            "@every 1m",
		DBPort:                    "5432",
		DBSSLMode:                 "disable",
		LogLevel:                  "info",
	}
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Default()

	cfg.UpstreamBaseURL = strings.TrimRight(getEnvWithDefault("UPSTREAM_BASE_URL", cfg.UpstreamBaseURL), "/")
	cfg.UpstreamAPIKey = os.Getenv("UPSTREAM_API_KEY")
	cfg.UpstreamAPISecret = os.Getenv("UPSTREAM_API_SECRET")
	cfg.RequestTimeout = getEnvDurationWithDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryDelay = getEnvDurationWithDefault("RETRY_DELAY", cfg.RetryDelay)
	cfg.UpstreamRPS = getEnvFloatWithDefault("UPSTREAM_RPS", cfg.UpstreamRPS)
	cfg.UpstreamBurst = getEnvIntWithDefault("UPSTREAM_BURST", cfg.UpstreamBurst)

	cfg.QuoteAsset = strings.ToUpper(getEnvWithDefault("QUOTE_ASSET", cfg.QuoteAsset))
	cfg.PopularTokens = getEnvListWithDefault("POPULAR_TOKENS", cfg.PopularTokens)
	cfg.MaxCandidates = getEnvIntWithDefault("MAX_CANDIDATES", cfg.MaxCandidates)
	cfg.TopN = getEnvIntWithDefault("TOP_N", cfg.TopN)
	cfg.Concurrency = getEnvIntWithDefault("CONCURRENCY", cfg.Concurrency)
	cfg.NewListingLimit = getEnvIntWithDefault("NEW_LISTING_LIMIT", cfg.NewListingLimit)

	cfg.CacheShortTTL = getEnvDurationWithDefault("CACHE_SHORT_TTL", cfg.CacheShortTTL)
	cfg.CacheLongTTL = getEnvDurationWithDefault("CACHE_LONG_TTL", cfg.CacheLongTTL)

	cfg.RSIPeriod = getEnvIntWithDefault("RSI_PERIOD", cfg.RSIPeriod)
	cfg.RSIInterval = getEnvWithDefault("RSI_INTERVAL", cfg.RSIInterval)
	cfg.RSIMin = getEnvFloatWithDefault("RSI_MIN", cfg.RSIMin)
	cfg.RSIMax = getEnvFloatWithDefault("RSI_MAX", cfg.RSIMax)
	cfg.VolumeLookbackDays = getEnvIntWithDefault("VOLUME_LOOKBACK_DAYS", cfg.VolumeLookbackDays)
	cfg.VolatilityInterval = getEnvWithDefault("VOLATILITY_INTERVAL", cfg.VolatilityInterval)
	cfg.VolatilityWindow = getEnvIntWithDefault("VOLATILITY_WINDOW", cfg.VolatilityWindow)
	cfg.VolatilityFallback = getEnvFloatWithDefault("VOLATILITY_FALLBACK", cfg.VolatilityFallback)
	cfg.CompressionThreshold = getEnvFloatWithDefault("COMPRESSION_THRESHOLD", cfg.CompressionThreshold)

	cfg.ExplosionVolumeFloor = getEnvFloatWithDefault("EXPLOSION_VOLUME_FLOOR", cfg.ExplosionVolumeFloor)
	cfg.AlertVolumeFloor = getEnvFloatWithDefault("ALERT_VOLUME_FLOOR", cfg.AlertVolumeFloor)
	cfg.MinChange5m = getEnvFloatWithDefault("MIN_CHANGE_5M", cfg.MinChange5m)
	cfg.MinChange1h = getEnvFloatWithDefault("MIN_CHANGE_1H", cfg.MinChange1h)
	cfg.MinVolumeRatio = getEnvFloatWithDefault("MIN_VOLUME_RATIO", cfg.MinVolumeRatio)
	cfg.MinExplosionScore = getEnvIntWithDefault("MIN_EXPLOSION_SCORE", cfg.MinExplosionScore)
	cfg.MinAlertScore = getEnvIntWithDefault("MIN_ALERT_SCORE", cfg.MinAlertScore)
	cfg.ExplosionCompressionBonus = getEnvFloatWithDefault("EXPLOSION_COMPRESSION_BONUS", cfg.ExplosionCompressionBonus)
	cfg.AlertCompressionBonus = getEnvFloatWithDefault("ALERT_COMPRESSION_BONUS", cfg.AlertCompressionBonus)
	cfg.NewListingBonus = getEnvFloatWithDefault("NEW_LISTING_BONUS", cfg.NewListingBonus)
	cfg.TimeBonus = getEnvFloatWithDefault("TIME_BONUS", cfg.TimeBonus)

	cfg.ExplosionTargetMultiplier = getEnvFloatWithDefault("EXPLOSION_TARGET_MULTIPLIER", cfg.ExplosionTargetMultiplier)
	cfg.ExplosionStopMultiplier = getEnvFloatWithDefault("EXPLOSION_STOP_MULTIPLIER", cfg.ExplosionStopMultiplier)
	cfg.AlertTargetMultiplier = getEnvFloatWithDefault("ALERT_TARGET_MULTIPLIER", cfg.AlertTargetMultiplier)
	cfg.AlertStopMultiplier = getEnvFloatWithDefault("ALERT_STOP_MULTIPLIER", cfg.AlertStopMultiplier)

	cfg.HTTPAddr = getEnvWithDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.HTTPRateLimit = getEnvFloatWithDefault("HTTP_RATE_LIMIT", cfg.HTTPRateLimit)
	cfg.HTTPBurst = getEnvIntWithDefault("HTTP_BURST", cfg.HTTPBurst)

	cfg.ScreenerURL = strings.TrimRight(getEnvWithDefault("SCREENER_URL", cfg.ScreenerURL), "/")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", cfg.TelegramChatID)
	cfg.NotifyMinScore = getEnvIntWithDefault("NOTIFY_MIN_SCORE", cfg.NotifyMinScore)
	cfg.NotifyCooldown = getEnvDurationWithDefault("NOTIFY_COOLDOWN", cfg.NotifyCooldown)
	cfg.NotifySchedule = getEnvWithDefault("NOTIFY_SCHEDULE", cfg.NotifySchedule)
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", cfg.DBPort)
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", cfg.DBSSLMode)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the pipeline cannot run with
func (c *Config) Validate() error {
	switch {
	case c.QuoteAsset == "":
		return errors.New("QUOTE_ASSET must not be empty")
	case c.TopN <= 0:
		return fmt.Errorf("TOP_N must be positive, got %d", c.TopN)
	case c.MaxCandidates <= 0:
		return fmt.Errorf("MAX_CANDIDATES must be positive, got %d", c.MaxCandidates)
	case c.Concurrency <= 0:
		return fmt.Errorf("CONCURRENCY must be positive, got %d", c.Concurrency)
	case c.RSIPeriod <= 0:
		return fmt.Errorf("RSI_PERIOD must be positive, got %d", c.RSIPeriod)
	case c.RSIMin > c.RSIMax:
		return fmt.Errorf("RSI_MIN (%g) exceeds RSI_MAX (%g)", c.RSIMin, c.RSIMax)
	case c.CacheShortTTL <= 0 || c.CacheLongTTL <= 0:
		return errors.New("cache TTLs must be positive")
	case c.MaxRetries < 0:
		return fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	case c.UpstreamRPS < 0:
		return fmt.Errorf("UPSTREAM_RPS must not be negative, got %g", c.UpstreamRPS)
	case c.HTTPRateLimit <= 0:
		return fmt.Errorf("HTTP_RATE_LIMIT must be positive, got %g", c.HTTPRateLimit)
	}
	return nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid float, using default")
	}
	return defaultValue
}

// getEnvDurationWithDefault accepts Go durations ("90s") or a bare number of seconds ("120").
func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	log.Warn().Str("key", key).Str("value", value).Msg("Invalid duration, using default")
	return defaultValue
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, strings.ToUpper(item))
		}
	}
	return out
}
