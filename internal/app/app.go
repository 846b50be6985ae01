package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bobmcallan/brief-portal/internal/briefs"
	"github.com/bobmcallan/brief-portal/internal/cache"
	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/config"
	"github.com/bobmcallan/brief-portal/internal/handlers"
	"github.com/bobmcallan/brief-portal/internal/interfaces"
	"github.com/bobmcallan/brief-portal/internal/mcp"
	"github.com/bobmcallan/brief-portal/internal/quotes"
	"github.com/bobmcallan/brief-portal/internal/storage"
)

// App holds all application components and dependencies.
type App struct {
	Config  *config.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	Briefs   *briefs.Store
	Quotes   *quotes.Client
	Sessions *quotes.Sessions

	// HTTP handlers
	PageHandler       *handlers.PageHandler
	HealthHandler     *handlers.HealthHandler
	VersionHandler    *handlers.VersionHandler
	BriefsHandler     *handlers.BriefsHandler
	QuoteHandler      *handlers.QuoteHandler
	OnboardingHandler *handlers.OnboardingHandler
	MCPHandler        *mcp.Handler
}

// New initializes the application with all dependencies. The brief feed is
// not read here; call LoadBriefs once the server is up.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	// Validate environment setting
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE, templates show build details")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	mgr, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.Storage = mgr

	a.Briefs = briefs.NewStore(cfg.Feed.Source, cfg.FeedTimeout(), logger)
	a.Quotes = quotes.NewClient(quotes.Options{
		ProviderURL:       cfg.Quotes.ProviderURL,
		RelayURL:          cfg.Quotes.RelayURL,
		Timeout:           cfg.QuoteTimeout(),
		RequestsPerMinute: cfg.Quotes.RequestsPerMinute,
		Burst:             cfg.Quotes.Burst,
		Cache:             cache.New(cfg.QuoteCacheTTL(), cfg.Quotes.CacheEntries),
		Location:          cfg.DisplayLocation(),
	}, logger)
	a.Sessions = quotes.NewSessions(0)

	a.initHandlers()

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	kv := a.Storage.KeyValueStorage()

	a.PageHandler = handlers.NewPageHandler(a.Logger, a.Config.IsDevMode(), a.Briefs, kv)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Briefs)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.BriefsHandler = handlers.NewBriefsHandler(a.Logger, a.Briefs)
	a.QuoteHandler = handlers.NewQuoteHandler(a.Logger, a.Quotes, a.Sessions)
	a.OnboardingHandler = handlers.NewOnboardingHandler(a.Logger, kv, a.Config.ShowDelay(), a.Config.DetachDelay())
	a.MCPHandler = mcp.NewHandler(a.Briefs, a.Quotes, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// LoadBriefs reads the feed once. A failure is logged and published in the
// store's state; the portal keeps serving and shows the error page. trigger
// names what asked for the load and is carried on both outcome lines.
func (a *App) LoadBriefs(ctx context.Context, trigger string) error {
	if err := a.Briefs.Load(ctx); err != nil {
		a.Logger.Error().
			Str("trigger", trigger).
			Str("source", a.Config.Feed.Source).
			Str("error", err.Error()).
			Msg("failed to load brief feed")
		return err
	}
	a.Logger.Info().
		Str("trigger", trigger).
		Int("briefs", len(a.Briefs.Briefs())).
		Str("source", a.Config.Feed.Source).
		Msg("brief feed loaded")
	return nil
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
