// Package earnings serves the earnings calendar with caching and a mock fallback
package earnings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/models"
	"github.com/bobmcallan/stockdash/internal/services/mock"
	"github.com/bobmcallan/stockdash/internal/storage/cache"
)

const dateFormat = "2006-01-02"

// Service implements EarningsService
type Service struct {
	client  interfaces.FinnhubClient
	store   interfaces.CacheStore
	symbols []string // mock fallback universe
	logger  *common.Logger
	ttl     time.Duration
	now     func() time.Time
}

// NewService creates a new earnings service. symbols seeds the mock
// fallback; store may be nil.
func NewService(client interfaces.FinnhubClient, store interfaces.CacheStore, symbols []string, logger *common.Logger) *Service {
	if store == nil {
		store = cache.NewNopStore()
	}
	return &Service{
		client:  client,
		store:   store,
		symbols: symbols,
		logger:  logger,
		ttl:     common.FreshnessEarnings,
		now:     time.Now,
	}
}

// CacheKey is earnings:{from}:{to} with YYYY-MM-DD dates.
func CacheKey(from, to time.Time) string {
	return fmt.Sprintf("earnings:%s:%s", from.Format(dateFormat), to.Format(dateFormat))
}

// Calendar returns earnings events between from and to, ordered by date then symbol.
// A provider failure yields mock events, which are not cached. An empty
// live calendar is a valid answer.
func (s *Service) Calendar(ctx context.Context, from, to time.Time) *models.EarningsCalendar {
	key := CacheKey(from, to)
	cal := &models.EarningsCalendar{
		From: from.Format(dateFormat),
		To:   to.Format(dateFormat),
	}

	entry, err := cache.GetFresh[[]models.EarningsEvent](ctx, s.store, key, s.ttl, s.now())
	if err == nil {
		cal.Events = entry.Data
		cal.Source = models.SourceLive
		cal.Cached = true
		return cal
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Str("key", key).Err(err).Msg("Ignoring unreadable cache entry")
	}

	events, err := s.client.GetEarningsCalendar(ctx, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Earnings calendar unavailable, serving demo data")
		cal.Events = mock.Earnings(s.symbols, from, to)
		cal.Source = models.SourceMock
		return cal
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Symbol < events[j].Symbol
	})

	if err := cache.PutEntry(ctx, s.store, key, events, s.now(), s.ttl); err != nil {
		s.logger.Warn().Str("key", key).Err(err).Msg("Failed to cache earnings calendar")
	}

	cal.Events = events
	cal.Source = models.SourceLive
	return cal
}
