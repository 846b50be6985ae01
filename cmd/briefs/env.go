package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/cache"
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/bobmcallan/brief-portal/internal/quotes"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

var commands = []subcommands.Command{
	&listCmd{},
	&showCmd{},
	&searchCmd{},
	&quoteCmd{},
}

// Global flags shared by every subcommand.
var (
	configFile string
	feedSource string
	plain      bool
	verbose    bool
)

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func registerGlobalFlags(f *flag.FlagSet) {
	f.StringVar(&configFile, "config", "", "Configuration file path")
	f.StringVar(&feedSource, "feed", "", "Brief feed URL or file (overrides config)")
	f.BoolVar(&plain, "plain", false, "Print raw markdown instead of rendering it")
	f.BoolVar(&verbose, "v", false, "Log to stderr")
}

func loadConfig() (*config.Config, *common.Logger, error) {
	var explicit []string
	if configFile != "" {
		explicit = []string{configFile}
	}
	cfg, err := config.LoadFromFiles(config.Discover(explicit, config.SearchPaths())...)
	if err != nil {
		return nil, nil, err
	}
	config.ApplyFlagOverrides(cfg, 0, "", feedSource)
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, nil, fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
	}

	logger := common.NewSilentLogger()
	if verbose {
		logger = common.NewLoggerWithOutput(cfg.Logging.Level, os.Stderr)
	}
	return cfg, logger, nil
}

// loadStore reads the feed once.
func loadStore(ctx context.Context) (*briefs.Store, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store := briefs.NewStore(cfg.Feed.Source, cfg.FeedTimeout(), logger)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func newQuoteClient() (*quotes.Client, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return quotes.NewClient(quotes.Options{
		ProviderURL:       cfg.Quotes.ProviderURL,
		RelayURL:          cfg.Quotes.RelayURL,
		Timeout:           cfg.QuoteTimeout(),
		RequestsPerMinute: cfg.Quotes.RequestsPerMinute,
		Burst:             cfg.Quotes.Burst,
		Cache:             cache.New(0, 1),
		Location:          cfg.DisplayLocation(),
	}, logger), nil
}

// printMarkdown renders md for the terminal, falling back to the raw text
// when rendering fails or -plain is set.
func printMarkdown(md string) {
	if plain {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
