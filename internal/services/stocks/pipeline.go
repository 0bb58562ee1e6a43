// Package stocks serves assembled stock lists per symbol universe:
// cache, then batched live fetch, then mock fallback.
package stocks

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/stockdash/internal/clients/finnhub"
	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/models"
	"github.com/bobmcallan/stockdash/internal/services/assembler"
	"github.com/bobmcallan/stockdash/internal/services/batch"
	"github.com/bobmcallan/stockdash/internal/services/mock"
	"github.com/bobmcallan/stockdash/internal/storage/cache"
)

// Pipeline implements StockService for one universe.
type Pipeline struct {
	universe string
	key      string
	ttl      time.Duration
	symbols  []string
	sched    batch.Scheduler
	timeout  time.Duration // bound on a shared refresh, 0 derives one from the schedule

	client interfaces.QuoteMetricsClient
	ref    interfaces.SymbolReference
	store  interfaces.CacheStore
	logger *common.Logger
	now    func() time.Time // injectable clock for testing

	group singleflight.Group
}

// NewPipeline creates a pipeline over symbols. store may be nil (no caching).
func NewPipeline(cfg common.PipelineConfig, symbols []string, client interfaces.QuoteMetricsClient, ref interfaces.SymbolReference, store interfaces.CacheStore, logger *common.Logger) *Pipeline {
	if store == nil {
		store = cache.NewNopStore()
	}
	sched := batch.Scheduler{
		BatchSize:  cfg.BatchSize,
		Delay:      cfg.GetBatchDelay(),
		MaxSymbols: cfg.MaxSymbols,
	}
	return &Pipeline{
		universe: cfg.Universe,
		key:      cfg.GetCacheKey(),
		ttl:      cfg.GetTTL(),
		symbols:  sched.Truncate(symbols),
		sched:    sched,
		client: client,
		ref:    ref,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Universe returns the universe name
func (p *Pipeline) Universe() string {
	return p.universe
}

// Symbols returns the symbols this pipeline fetches, in order
func (p *Pipeline) Symbols() []string {
	out := make([]string, len(p.symbols))
	copy(out, p.symbols)
	return out
}

// CacheKey returns the store key the list is written under
func (p *Pipeline) CacheKey() string {
	return p.key
}

const partialMessage = "Refresh did not complete; showing the symbols fetched so far"

// refreshMargin is added to the scheduled pauses to bound a shared refresh.
const refreshMargin = 2 * time.Minute

// Get returns the cached list when it is younger than the pipeline TTL,
// otherwise refreshes. Concurrent refreshes in this process share one run,
// which is detached from any single caller's cancellation.
func (p *Pipeline) Get(ctx context.Context, force bool) *models.StockList {
	if !force {
		if list := p.cached(ctx); list != nil {
			return list
		}
	}

	v, _, shared := p.group.Do(p.key, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.refreshTimeout())
		defer cancel()
		return p.refresh(rctx), nil
	})
	if shared {
		p.logger.Debug().Str("universe", p.universe).Msg("Joined in-flight refresh")
	}
	return v.(*models.StockList)
}

// Refresh bypasses the cache
func (p *Pipeline) Refresh(ctx context.Context) *models.StockList {
	return p.Get(ctx, true)
}

func (p *Pipeline) refreshTimeout() time.Duration {
	if p.timeout > 0 {
		return p.timeout
	}
	return p.sched.EstimatedDuration(len(p.symbols)) + refreshMargin
}

func (p *Pipeline) cached(ctx context.Context) *models.StockList {
	entry, err := cache.GetFresh[[]models.StockRecord](ctx, p.store, p.key, p.ttl, p.now())
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			p.logger.Warn().Str("key", p.key).Err(err).Msg("Ignoring unreadable cache entry")
		}
		return nil
	}
	if len(entry.Data) == 0 {
		return nil
	}

	p.logger.Debug().Str("universe", p.universe).Int("stocks", len(entry.Data)).Msg("Serving cached stock list")
	return &models.StockList{
		Universe:   p.universe,
		Data:       entry.Data,
		Source:     models.SourceLive,
		Cached:     true,
		StockCount: len(entry.Data),
		Timestamp:  entry.Created(),
	}
}

func (p *Pipeline) refresh(ctx context.Context) *models.StockList {
	started := p.now()

	p.logger.Info().
		Str("universe", p.universe).
		Int("symbols", len(p.symbols)).
		Dur("estimated", p.sched.EstimatedDuration(len(p.symbols))).
		Msg("Stock refresh starting")

	records, stats := batch.Run(ctx, p.sched, p.symbols, p.fetch)

	p.logger.Info().
		Str("universe", p.universe).
		Int("requested", stats.Requested).
		Int("succeeded", stats.Succeeded).
		Int("batches", stats.Batches).
		Dur("elapsed", stats.Elapsed).
		Bool("cancelled", stats.Cancelled).
		Msg("Stock refresh complete")

	if len(records) == 0 {
		p.logger.Warn().Str("universe", p.universe).Msg("No live data, serving demo data")
		return p.fallback()
	}

	assembler.Sort(records)

	var message string
	partial := stats.Cancelled || ctx.Err() != nil
	if partial {
		message = partialMessage
		p.logger.Warn().
			Str("universe", p.universe).
			Int("succeeded", stats.Succeeded).
			Int("requested", stats.Requested).
			Msg("Stock refresh cut short, serving partial list uncached")
	} else if err := cache.PutEntry(ctx, p.store, p.key, records, started, p.ttl); err != nil {
		p.logger.Warn().Str("key", p.key).Err(err).Msg("Failed to cache stock list")
	}

	return &models.StockList{
		Universe:   p.universe,
		Data:       records,
		Source:     models.SourceLive,
		Cached:     false,
		StockCount: len(records),
		Timestamp:  started,
		Message:    message,
		Partial:    partial,
	}
}

func (p *Pipeline) fetch(ctx context.Context, symbol string) (models.StockRecord, bool) {
	data := finnhub.FetchSymbol(ctx, p.client, symbol)
	if err := data.QuoteR.Err; err != nil {
		p.logger.Debug().Str("symbol", symbol).Err(err).Msg("Quote unavailable, dropping symbol")
	}
	if err := data.MetricR.Err; err != nil {
		p.logger.Debug().Str("symbol", symbol).Err(err).Msg("Metrics unavailable, using estimates")
	}

	var meta *models.SymbolMetadata
	if p.ref != nil {
		if m, ok := p.ref.Lookup(symbol); ok {
			meta = &m
		}
	}

	rec, ok := assembler.Assemble(symbol, data.Quote(), data.Metrics(), meta)
	if !ok {
		return models.StockRecord{}, false
	}
	return *rec, true
}

func (p *Pipeline) fallback() *models.StockList {
	records := mock.Stocks(p.symbols, p.ref)
	return &models.StockList{
		Universe:   p.universe,
		Data:       records,
		Source:     models.SourceMock,
		Cached:     false,
		StockCount: len(records),
		Timestamp:  p.now(),
		Message:    mock.Message,
	}
}
