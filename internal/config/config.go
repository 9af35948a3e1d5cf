package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"nagato/internal/microblog"
)

// ErrMissingCredentials is returned when a required API credential is not set.
var ErrMissingCredentials = errors.New("missing credentials")

// Microblog backends.
const (
	BackendTwitter  = "twitter"
	BackendMastodon = "mastodon"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Yahoo! JAPAN Web APIs
	YahooApplicationID string
	YahooRateLimit     float64 // requests per second, 0 disables pacing

	// Microblog backends. Twitter wins when both are configured.
	TwitterAccessToken  string
	TwitterAPIBaseURL   string
	MastodonAccessToken string
	MastodonAPIBaseURL  string // e.g. "https://mstdn.jp"

	// Logging and alerting
	SlackWebhookURL string
	LogStream       bool   // also log to stderr
	LogLevel        string // debug, info, warn, error
	LogFormat       string // text or json

	// Reply log: Postgres when DatabaseURL is set, else bbolt when StateFile is set
	DatabaseURL string
	StateFile   string

	// Search cache
	RedisURL       string
	SearchCacheTTL time.Duration

	// Metrics
	PushgatewayURL string

	// Behaviour
	KeywordLimit    int // keywords fed into a recommendation search
	RandomPostOdds  int // 1 in N runs posts a random phrase
	HTTPTimeout     time.Duration
	Timezone        string
	RefollowEnabled bool

	// Optional YAML file with phrases and search tuning
	ConfigFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		YahooApplicationID: getEnv("YAHOO_APPLICATION_ID", ""),
		YahooRateLimit:     getEnvFloat("YAHOO_RATE_LIMIT", 5),

		TwitterAccessToken:  getEnv("TWITTER_ACCESS_TOKEN", ""),
		TwitterAPIBaseURL:   strings.TrimRight(getEnv("TWITTER_API_BASE_URL", microblog.DefaultTwitterBaseURL), "/"),
		MastodonAccessToken: getEnv("MASTODON_ACCESS_TOKEN", ""),
		MastodonAPIBaseURL:  strings.TrimRight(getEnv("MASTODON_API_BASE_URL", ""), "/"),

		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		LogStream:       getEnv("NAGATO_LOG_STREAM", "") != "",
		LogLevel:        getEnv("NAGATO_LOG_LEVEL", "debug"),
		LogFormat:       getEnv("NAGATO_LOG_FORMAT", "text"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		StateFile:   getEnv("NAGATO_STATE_FILE", ""),

		RedisURL:       getEnv("REDIS_URL", ""),
		SearchCacheTTL: getEnvDuration("SEARCH_CACHE_TTL", 24*time.Hour),

		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),

		KeywordLimit:    getEnvInt("KEYWORD_LIMIT", 10),
		RandomPostOdds:  getEnvInt("RANDOM_POST_ODDS", 1440),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		Timezone:        getEnv("TIMEZONE", "Asia/Tokyo"),
		RefollowEnabled: getEnv("REFOLLOW_ENABLED", "") != "",

		ConfigFile: getEnv("CONFIG_FILE", "nagato.yaml"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return fallback
}

// Backend returns the configured microblog backend, or "" when none is.
func (c *Config) Backend() string {
	switch {
	case c.TwitterAccessToken != "":
		return BackendTwitter
	case c.MastodonAccessToken != "" && c.MastodonAPIBaseURL != "":
		return BackendMastodon
	default:
		return ""
	}
}

// IsCacheEnabled returns true if search results should be cached in Redis.
func (c *Config) IsCacheEnabled() bool {
	return c.RedisURL != "" && c.SearchCacheTTL > 0
}

// IsPushEnabled returns true if metrics should be pushed to a Pushgateway.
func (c *Config) IsPushEnabled() bool {
	return c.PushgatewayURL != ""
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel parses LogLevel, defaulting to info for unknown values.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate reports missing credentials and out-of-range settings.
func (c *Config) Validate() error {
	if c.YahooApplicationID == "" {
		return fmt.Errorf("%w: YAHOO_APPLICATION_ID is not set", ErrMissingCredentials)
	}
	if c.Backend() == "" {
		return fmt.Errorf("%w: set TWITTER_ACCESS_TOKEN, or MASTODON_ACCESS_TOKEN and MASTODON_API_BASE_URL", ErrMissingCredentials)
	}
	if c.KeywordLimit <= 0 {
		return fmt.Errorf("KEYWORD_LIMIT must be positive, got %d", c.KeywordLimit)
	}
	if c.RandomPostOdds <= 0 {
		return fmt.Errorf("RANDOM_POST_ODDS must be positive, got %d", c.RandomPostOdds)
	}
	return nil
}
