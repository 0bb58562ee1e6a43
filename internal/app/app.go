// Package app wires configuration, cache, clients and services into the
// shared core used by cmd/stockdash-server and cmd/stockdash-refresh.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/stockdash/internal/clients/finnhub"
	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/reference"
	"github.com/bobmcallan/stockdash/internal/services/earnings"
	"github.com/bobmcallan/stockdash/internal/services/marketclock"
	"github.com/bobmcallan/stockdash/internal/services/prices"
	"github.com/bobmcallan/stockdash/internal/services/quote"
	"github.com/bobmcallan/stockdash/internal/services/stocks"
	"github.com/bobmcallan/stockdash/internal/storage/cache"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Cache           interfaces.CacheStore
	Reference       *reference.Data
	FinnhubClient   *finnhub.Client
	Stocks          *stocks.Registry
	QuoteService    interfaces.QuoteService
	PriceService    interfaces.PriceService
	EarningsService interfaces.EarningsService
	Clock           interfaces.MarketClock
	StartupTime     time.Time

	schedulerCancel context.CancelFunc
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes all services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config path: argument, STOCKDASH_CONFIG, binary dir, then ./config for development
	if configPath == "" {
		configPath = os.Getenv("STOCKDASH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "stockdash.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stockdash.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}
	if config.Cache.Badger.Path != "" && !filepath.IsAbs(config.Cache.Badger.Path) {
		config.Cache.Badger.Path = filepath.Join(binDir, config.Cache.Badger.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	logger.Debug().Str("path", configPath).Msg("Configuration loaded")

	return NewAppWithConfig(config, logger)
}

// NewAppWithConfig initializes all services from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	ctx := context.Background()

	if missing := config.ValidateRequired(); len(missing) > 0 {
		// Not fatal: every pipeline falls back to demo data
		logger.Error().
			Str("missing", strings.Join(missing, ", ")).
			Msg("Required settings missing - set FINNHUB_API_KEY; serving demo data")
	}

	ref, err := reference.Load(config.Reference.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	store := cache.New(ctx, config.Cache, logger)

	client := finnhub.NewClientFromConfig(config.Clients.Finnhub, logger)

	registry, err := stocks.NewRegistry(config.Pipelines, client, ref, store, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize stock pipelines: %w", err)
	}

	// Earnings demo data covers the dashboard's top list
	earningsSymbols, _ := ref.Universe(registry.Default().Universe())

	a := &App{
		Config:          config,
		Logger:          logger,
		Cache:           store,
		Reference:       ref,
		FinnhubClient:   client,
		Stocks:          registry,
		QuoteService:    quote.NewService(client, ref, store, logger),
		PriceService:    prices.NewService(client, store, logger),
		EarningsService: earnings.NewService(client, store, earningsSymbols, logger),
		Clock:           marketclock.New(marketclock.DefaultMIC, logger),
		StartupTime:     startupStart,
	}

	logger.Info().
		Str("cache", store.Name()).
		Strs("universes", registry.Universes()).
		Int("symbols", ref.Len()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, cancel warm cache, close cache.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close cache")
		}
		a.Cache = nil
	}
}

// StartWarmCache fills every stale pipeline once in the background.
func (a *App) StartWarmCache() {
	if !a.Config.Refresh.WarmOnStart {
		a.Logger.Info().Msg("Warm cache: disabled in config")
		return
	}
	warmCtx, warmCancel := context.WithTimeout(context.Background(), warmCacheTimeout)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.Stocks.All(), a.Logger)
	}()
}

// StartRefreshScheduler refreshes every pipeline on refresh.interval.
func (a *App) StartRefreshScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel

	var clock interfaces.MarketClock
	if a.Config.Refresh.MarketHoursOnly {
		clock = a.Clock
	}
	go startRefreshScheduler(schedulerCtx, a.RefreshAll, clock, a.Logger, a.Config.Refresh.GetInterval())
}
