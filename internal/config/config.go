package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	Feed        FeedConfig           `toml:"feed"`
	Quotes      QuotesConfig         `toml:"quotes"`
	Onboarding  OnboardingConfig     `toml:"onboarding"`
	Storage     StorageConfig        `toml:"storage"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// FeedConfig locates the brief feed. Source is an http(s) URL or a file path.
type FeedConfig struct {
	Source  string `toml:"source"`
	Timeout string `toml:"timeout"`
}

// QuotesConfig contains quote provider and relay settings.
type QuotesConfig struct {
	ProviderURL       string `toml:"provider_url"`
	RelayURL          string `toml:"relay_url"` // empty calls the provider directly
	Timeout           string `toml:"timeout"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	Burst             int    `toml:"burst"`
	CacheTTL          string `toml:"cache_ttl"` // "0s" disables the upstream cache
	CacheEntries      int    `toml:"cache_entries"`
	Timezone          string `toml:"timezone"` // chart timestamp display zone
}

// OnboardingConfig contains the ticker tooltip timings.
type OnboardingConfig struct {
	ShowDelay   string `toml:"show_delay"`
	DetachDelay string `toml:"detach_delay"`
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// IsDevMode reports whether the portal runs with development defaults.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// FeedTimeout returns the feed request timeout.
func (c *Config) FeedTimeout() time.Duration {
	return parseDuration(c.Feed.Timeout, 15*time.Second)
}

// QuoteTimeout returns the per-lookup timeout.
func (c *Config) QuoteTimeout() time.Duration {
	return parseDuration(c.Quotes.Timeout, 10*time.Second)
}

// QuoteCacheTTL returns how long upstream chart payloads are reused.
func (c *Config) QuoteCacheTTL() time.Duration {
	return parseDuration(c.Quotes.CacheTTL, 30*time.Second)
}

// ShowDelay returns the tooltip display delay.
func (c *Config) ShowDelay() time.Duration {
	return parseDuration(c.Onboarding.ShowDelay, time.Second)
}

// DetachDelay returns the tooltip dismiss animation delay.
func (c *Config) DetachDelay() time.Duration {
	return parseDuration(c.Onboarding.DetachDelay, 300*time.Millisecond)
}

// DisplayLocation returns the zone chart timestamps are shown in.
func (c *Config) DisplayLocation() *time.Location {
	if c.Quotes.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Quotes.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate returns human-readable problems with mandatory settings.
func (c *Config) Validate() []string {
	var issues []string
	if strings.TrimSpace(c.Feed.Source) == "" {
		issues = append(issues, "feed.source is required (BRIEFS_FEED_SOURCE)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if u, err := url.Parse(c.Quotes.ProviderURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, fmt.Sprintf("quotes.provider_url %q is not an absolute URL", c.Quotes.ProviderURL))
	}
	if c.Quotes.RelayURL != "" {
		if u, err := url.Parse(c.Quotes.RelayURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, fmt.Sprintf("quotes.relay_url %q is not an absolute URL", c.Quotes.RelayURL))
		}
	}
	for name, v := range map[string]string{
		"feed.timeout":            c.Feed.Timeout,
		"quotes.timeout":          c.Quotes.Timeout,
		"quotes.cache_ttl":        c.Quotes.CacheTTL,
		"onboarding.show_delay":   c.Onboarding.ShowDelay,
		"onboarding.detach_delay": c.Onboarding.DetachDelay,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			issues = append(issues, fmt.Sprintf("%s %q is not a duration", name, v))
		}
	}
	if c.Quotes.Timezone != "" {
		if _, err := time.LoadLocation(c.Quotes.Timezone); err != nil {
			issues = append(issues, fmt.Sprintf("quotes.timezone %q is unknown", c.Quotes.Timezone))
		}
	}
	return issues
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies BRIEFS_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BRIEFS_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("BRIEFS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("BRIEFS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if src := os.Getenv("BRIEFS_FEED_SOURCE"); src != "" {
		config.Feed.Source = src
	}
	if provider := os.Getenv("BRIEFS_QUOTES_PROVIDER_URL"); provider != "" {
		config.Quotes.ProviderURL = provider
	}
	// An explicitly empty relay disables it, so presence is checked rather than value.
	if relay, ok := os.LookupEnv("BRIEFS_QUOTES_RELAY_URL"); ok {
		config.Quotes.RelayURL = relay
	}
	if tz := os.Getenv("BRIEFS_QUOTES_TIMEZONE"); tz != "" {
		config.Quotes.Timezone = tz
	}
	if badgerPath := os.Getenv("BRIEFS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("BRIEFS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host, feed string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if feed != "" {
		config.Feed.Source = feed
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
