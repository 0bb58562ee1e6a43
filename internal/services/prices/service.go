// Package prices serves daily price history with caching and a mock fallback
package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/models"
	"github.com/bobmcallan/stockdash/internal/services/mock"
	"github.com/bobmcallan/stockdash/internal/storage/cache"
)

// Resolution is the candle resolution requested from the provider.
const Resolution = "D"

// Service implements PriceService
type Service struct {
	client interfaces.FinnhubClient
	store  interfaces.CacheStore
	logger *common.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a new price service. store may be nil.
func NewService(client interfaces.FinnhubClient, store interfaces.CacheStore, logger *common.Logger) *Service {
	if store == nil {
		store = cache.NewNopStore()
	}
	return &Service{
		client: client,
		store:  store,
		logger: logger,
		ttl:    common.FreshnessPriceHistory,
		now:    time.Now,
	}
}

// CacheKey is stock_prices:{symbol}:{from}:{to} in unix seconds.
func CacheKey(symbol string, from, to time.Time) string {
	return fmt.Sprintf("stock_prices:%s:%d:%d", symbol, from.Unix(), to.Unix())
}

// History returns daily candles between from and to. Provider failure or
// an empty range yields a mock random walk, which is not cached.
func (s *Service) History(ctx context.Context, symbol string, from, to time.Time) *models.PriceHistory {
	key := CacheKey(symbol, from, to)

	entry, err := cache.GetFresh[[]models.Candle](ctx, s.store, key, s.ttl, s.now())
	if err == nil {
		return &models.PriceHistory{
			Symbol:  symbol,
			From:    from,
			To:      to,
			Candles: entry.Data,
			Source:  models.SourceLive,
			Cached:  true,
		}
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Str("key", key).Err(err).Msg("Ignoring unreadable cache entry")
	}

	candles, err := s.client.GetCandles(ctx, symbol, Resolution, from, to)
	if err != nil || len(candles) == 0 {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Price history unavailable, serving demo data")
		return &models.PriceHistory{
			Symbol:  symbol,
			From:    from,
			To:      to,
			Candles: mock.Candles(symbol, from, to),
			Source:  models.SourceMock,
		}
	}

	if err := cache.PutEntry(ctx, s.store, key, candles, s.now(), s.ttl); err != nil {
		s.logger.Warn().Str("key", key).Err(err).Msg("Failed to cache price history")
	}

	return &models.PriceHistory{
		Symbol:  symbol,
		From:    from,
		To:      to,
		Candles: candles,
		Source:  models.SourceLive,
	}
}
