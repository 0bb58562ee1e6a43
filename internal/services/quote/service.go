// Package quote serves a single live, assembled stock record
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/stockdash/internal/clients/finnhub"
	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/models"
	"github.com/bobmcallan/stockdash/internal/services/assembler"
	"github.com/bobmcallan/stockdash/internal/services/mock"
	"github.com/bobmcallan/stockdash/internal/storage/cache"
)

// Service implements QuoteService. Assembled records are cached briefly
// per symbol; unknown symbols and demo records are never cached.
type Service struct {
	client interfaces.QuoteMetricsClient
	ref    interfaces.SymbolReference
	store  interfaces.CacheStore
	logger *common.Logger
	ttl    time.Duration
	now    func() time.Time // injectable clock for testing
}

// NewService creates a new quote service. store may be nil.
func NewService(client interfaces.QuoteMetricsClient, ref interfaces.SymbolReference, store interfaces.CacheStore, logger *common.Logger) *Service {
	if store == nil {
		store = cache.NewNopStore()
	}
	return &Service{
		client: client,
		ref:    ref,
		store:  store,
		logger: logger,
		ttl:    common.FreshnessQuote,
		now:    time.Now,
	}
}

func cacheKey(symbol string) string {
	return fmt.Sprintf("stock:%s", symbol)
}

// GetStock returns the assembled record for symbol. Only a symbol the
// provider has no data for is an error; any other failure serves a mock
// record, which is not cached.
func (s *Service) GetStock(ctx context.Context, symbol string) (*models.StockDetail, error) {
	key := cacheKey(symbol)

	if entry, err := cache.GetFresh[models.StockRecord](ctx, s.store, key, s.ttl, s.now()); err == nil {
		return &models.StockDetail{StockRecord: entry.Data, Source: models.SourceLive, Cached: true}, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Str("key", key).Err(err).Msg("Ignoring unreadable cache entry")
	}

	data := finnhub.FetchSymbol(ctx, s.client, symbol)
	if err := data.QuoteR.Err; err != nil {
		if errors.Is(err, finnhub.ErrNoData) {
			s.logger.Debug().Str("symbol", symbol).Msg("Unknown symbol")
			return nil, fmt.Errorf("%s: %w", symbol, interfaces.ErrUnknownSymbol)
		}
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Quote unavailable, serving demo data")
		return s.fallback(symbol), nil
	}

	var meta *models.SymbolMetadata
	if s.ref != nil {
		if m, ok := s.ref.Lookup(symbol); ok {
			meta = &m
		}
	}

	rec, ok := assembler.Assemble(symbol, data.Quote(), data.Metrics(), meta)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, interfaces.ErrUnknownSymbol)
	}

	if err := cache.PutEntry(ctx, s.store, key, *rec, s.now(), s.ttl); err != nil {
		s.logger.Warn().Str("key", key).Err(err).Msg("Failed to cache stock record")
	}
	return &models.StockDetail{StockRecord: *rec, Source: models.SourceLive}, nil
}

func (s *Service) fallback(symbol string) *models.StockDetail {
	records := mock.Stocks([]string{symbol}, s.ref)
	return &models.StockDetail{StockRecord: records[0], Source: models.SourceMock, Message: mock.Message}
}
