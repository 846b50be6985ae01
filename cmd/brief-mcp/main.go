// Command brief-mcp serves the brief and quote tools to a local MCP client
// over stdio, or over streamable HTTP with -port.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/cache"
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/bobmcallan/brief-portal/internal/mcp"
	"github.com/bobmcallan/brief-portal/internal/quotes"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (default: discovered brief-portal.toml)")
	feed := flag.String("feed", "", "Brief feed URL or file (overrides config)")
	port := flag.Int("port", 0, "Serve streamable HTTP on this port instead of stdio")
	noQuotes := flag.Bool("no-quotes", false, "Do not expose the get_quote tool")
	flag.Parse()

	var explicit []string
	if *configFile != "" {
		explicit = []string{*configFile}
	}
	cfg, err := config.LoadFromFiles(config.Discover(explicit, config.SearchPaths())...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	config.ApplyFlagOverrides(cfg, 0, "", *feed)
	if issues := cfg.Validate(); len(issues) > 0 {
		fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", strings.Join(issues, "; "))
		os.Exit(1)
	}

	// stdout carries the protocol, so logs always go to stderr.
	logger := common.NewLoggerWithOutput(cfg.Logging.Level, os.Stderr)

	store := briefs.NewStore(cfg.Feed.Source, cfg.FeedTimeout(), logger)
	if err := store.Load(context.Background()); err != nil {
		// Tools report the feed as unavailable; the server still starts.
		logger.Error().Str("source", cfg.Feed.Source).Str("error", err.Error()).Msg("failed to load brief feed")
	}

	var lookup quotes.Lookuper
	if !*noQuotes {
		lookup = quotes.NewClient(quotes.Options{
			ProviderURL:       cfg.Quotes.ProviderURL,
			RelayURL:          cfg.Quotes.RelayURL,
			Timeout:           cfg.QuoteTimeout(),
			RequestsPerMinute: cfg.Quotes.RequestsPerMinute,
			Burst:             cfg.Quotes.Burst,
			Cache:             cache.New(cfg.QuoteCacheTTL(), cfg.Quotes.CacheEntries),
			Location:          cfg.DisplayLocation(),
		}, logger)
	}

	mcpServer, count := mcp.NewServer(mcp.NewTools(store, lookup, logger))
	logger.Info().Int("tools", count).Msg("MCP tools registered")

	if *port == 0 {
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)
	addr := fmt.Sprintf(":%d", *port)
	logger.Info().Str("addr", addr).Msg("starting MCP streamable HTTP")
	if err := httpServer.Start(addr); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}
