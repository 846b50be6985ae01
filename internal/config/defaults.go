package config

import "github.com/bobmcallan/brief-portal/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4251,
			Host: "localhost",
		},
		Feed: FeedConfig{
			Source:  "./data/briefs.json",
			Timeout: "15s",
		},
		Quotes: QuotesConfig{
			ProviderURL:       "https://query1.finance.yahoo.com/v8/finance",
			RelayURL:          "https://api.allorigins.win/raw",
			Timeout:           "10s",
			RequestsPerMinute: 60,
			Burst:             4,
			CacheTTL:          "30s",
			CacheEntries:      256,
		},
		Onboarding: OnboardingConfig{
			ShowDelay:   "1s",
			DetachDelay: "300ms",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/portal",
			},
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Outputs: []string{"console"},
		},
	}
}
