package common

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// TestConfig is read from tests/ui/test_config.toml when present.
type TestConfig struct {
	Results struct {
		Dir string `toml:"dir"`
	} `toml:"results"`
	Server struct {
		URL string `toml:"url"`
	} `toml:"server"`
	Browser struct {
		Headless    bool `toml:"headless"`
		TimeoutSecs int  `toml:"timeout_seconds"`
	} `toml:"browser"`
}

var (
	globalConfig     *TestConfig
	globalConfigOnce sync.Once
	resultsDir       string
	resultsDirOnce   sync.Once
)

func LoadTestConfig() *TestConfig {
	globalConfigOnce.Do(func() {
		globalConfig = &TestConfig{}
		globalConfig.Results.Dir = "tests/results"
		globalConfig.Browser.Headless = true
		globalConfig.Browser.TimeoutSecs = 30

		configPaths := []string{
			"tests/ui/test_config.toml",
			"test_config.toml",
		}
		for _, path := range configPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if err := toml.Unmarshal(data, globalConfig); err == nil {
				return
			}
		}
	})
	return globalConfig
}

// ExternalURL returns the portal to drive instead of an in-process one.
// BRIEFS_TEST_URL wins over the config file; empty means start locally.
func ExternalURL() string {
	if url := os.Getenv("BRIEFS_TEST_URL"); url != "" {
		return url
	}
	return LoadTestConfig().Server.URL
}

// ScreenshotDir returns a timestamped directory under the results dir.
func ScreenshotDir(subdir string) string {
	resultsDirOnce.Do(func() {
		base := os.Getenv("BRIEFS_TEST_RESULTS_DIR")
		if base == "" {
			base = LoadTestConfig().Results.Dir
			if wd, err := os.Getwd(); err == nil && filepath.Base(wd) == "ui" && !filepath.IsAbs(base) {
				base = filepath.Join("..", "..", base)
			}
		}
		resultsDir = filepath.Join(base, time.Now().Format("2006-01-02-15-04-05"))
	})
	dir := filepath.Join(resultsDir, subdir)
	os.MkdirAll(dir, 0755)
	return dir
}
