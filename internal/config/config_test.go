package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nagato/internal/microblog"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"KEYWORD_LIMIT", "RANDOM_POST_ODDS", "HTTP_TIMEOUT", "TIMEZONE", "SEARCH_CACHE_TTL", "NAGATO_LOG_STREAM", "TWITTER_API_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.KeywordLimit != 10 {
		t.Errorf("KeywordLimit = %d, want 10", cfg.KeywordLimit)
	}
	if cfg.RandomPostOdds != 1440 {
		t.Errorf("RandomPostOdds = %d, want 1440", cfg.RandomPostOdds)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q, want %q", cfg.Timezone, "Asia/Tokyo")
	}
	if cfg.SearchCacheTTL != 24*time.Hour {
		t.Errorf("SearchCacheTTL = %v, want 24h", cfg.SearchCacheTTL)
	}
	if cfg.LogStream {
		t.Error("LogStream should be false by default")
	}
	if cfg.TwitterAPIBaseURL != microblog.DefaultTwitterBaseURL {
		t.Errorf("TwitterAPIBaseURL = %q, want %q", cfg.TwitterAPIBaseURL, microblog.DefaultTwitterBaseURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KEYWORD_LIMIT", "5")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("YAHOO_RATE_LIMIT", "0.5")
	t.Setenv("MASTODON_API_BASE_URL", "https://mstdn.example/")
	t.Setenv("NAGATO_LOG_STREAM", "1")

	cfg := Load()
	if cfg.KeywordLimit != 5 {
		t.Errorf("KeywordLimit = %d, want 5", cfg.KeywordLimit)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %v, want 3s", cfg.HTTPTimeout)
	}
	if cfg.YahooRateLimit != 0.5 {
		t.Errorf("YahooRateLimit = %v, want 0.5", cfg.YahooRateLimit)
	}
	if cfg.MastodonAPIBaseURL != "https://mstdn.example" {
		t.Errorf("MastodonAPIBaseURL = %q, want trailing slash trimmed", cfg.MastodonAPIBaseURL)
	}
	if !cfg.LogStream {
		t.Error("LogStream should be true when NAGATO_LOG_STREAM is set")
	}
}

func TestConfig_Backend(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		expected string
	}{
		{"twitter only", &Config{TwitterAccessToken: "t"}, BackendTwitter},
		{"mastodon only", &Config{MastodonAccessToken: "m", MastodonAPIBaseURL: "https://mstdn.example"}, BackendMastodon},
		{"both prefer twitter", &Config{TwitterAccessToken: "t", MastodonAccessToken: "m", MastodonAPIBaseURL: "https://mstdn.example"}, BackendTwitter},
		{"mastodon without base URL", &Config{MastodonAccessToken: "m"}, ""},
		{"nothing", &Config{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Backend(); got != tt.expected {
				t.Errorf("Backend() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{YahooApplicationID: "app", TwitterAccessToken: "t", KeywordLimit: 10, RandomPostOdds: 1440}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	noYahoo := valid()
	noYahoo.YahooApplicationID = ""
	if err := noYahoo.Validate(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Validate() without Yahoo ID error = %v, want ErrMissingCredentials", err)
	}

	noBackend := valid()
	noBackend.TwitterAccessToken = ""
	if err := noBackend.Validate(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Validate() without backend error = %v, want ErrMissingCredentials", err)
	}

	badLimit := valid()
	badLimit.KeywordLimit = 0
	if err := badLimit.Validate(); err == nil {
		t.Error("Validate() with zero keyword limit should fail")
	}

	badOdds := valid()
	badOdds.RandomPostOdds = 0
	if err := badOdds.Validate(); err == nil {
		t.Error("Validate() with zero odds should fail")
	}
}

func TestConfig_Flags(t *testing.T) {
	if (&Config{RedisURL: "redis://localhost:6379"}).IsCacheEnabled() {
		t.Error("IsCacheEnabled() should be false with a zero TTL")
	}
	if !(&Config{RedisURL: "redis://localhost:6379", SearchCacheTTL: time.Hour}).IsCacheEnabled() {
		t.Error("IsCacheEnabled() should be true with URL and TTL")
	}
	if (&Config{}).IsPushEnabled() {
		t.Error("IsPushEnabled() should be false without a URL")
	}
}

func TestConfig_Location(t *testing.T) {
	if loc := (&Config{Timezone: "Asia/Tokyo"}).Location(); loc.String() != "Asia/Tokyo" {
		t.Errorf("Location() = %v, want Asia/Tokyo", loc)
	}
	if loc := (&Config{Timezone: "Nowhere/Special"}).Location(); loc != time.UTC {
		t.Errorf("Location() for unknown zone = %v, want UTC", loc)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadYAMLConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil || cfg != nil {
		t.Fatalf("LoadYAMLConfig(missing) = %v, %v; want nil, nil", cfg, err)
	}
	if got := cfg.GetSearch().GenreCategoryID; got != DefaultGenreCategoryID {
		t.Errorf("GetSearch() on nil config = %d, want %d", got, DefaultGenreCategoryID)
	}
	if cfg.GetPhrases() != nil {
		t.Error("GetPhrases() on nil config should be nil")
	}

	path := filepath.Join(dir, "nagato.yaml")
	data := "phrases:\n  - 情報の伝達に齟齬が発生するかもしれない。\n  - 本を読む。\nsearch:\n  sort: \"-score\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err = LoadYAMLConfig(path)
	if err != nil {
		t.Fatalf("LoadYAMLConfig() error = %v", err)
	}
	if len(cfg.GetPhrases()) != 2 {
		t.Errorf("GetPhrases() = %v, want 2 phrases", cfg.GetPhrases())
	}
	if got := cfg.GetSearch(); got.GenreCategoryID != DefaultGenreCategoryID || got.Sort != "-score" {
		t.Errorf("GetSearch() = %+v", got)
	}

	if err := os.WriteFile(path, []byte("phrases: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadYAMLConfig(path); err == nil {
		t.Error("LoadYAMLConfig() with invalid YAML should fail")
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := (&Config{LogLevel: tt.level}).SlogLevel(); got != tt.expected {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}
