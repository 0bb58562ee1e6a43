// Package interfaces defines service contracts for stockdash
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/stockdash/internal/models"
)

// StockService serves one universe's assembled stock list
type StockService interface {
	// Universe returns the universe this service serves
	Universe() string

	// Get returns the cached list when fresh, otherwise refreshes it.
	// When force is true the cache is bypassed. Never returns an empty
	// error state: on failure the list is mock data.
	Get(ctx context.Context, force bool) *models.StockList

	// Refresh is Get with force
	Refresh(ctx context.Context) *models.StockList
}

// ErrUnknownSymbol is returned when the provider has no data for a symbol
var ErrUnknownSymbol = errors.New("unknown symbol")

// QuoteService assembles a single live stock record
type QuoteService interface {
	// GetStock returns the assembled record. A failed fetch yields a mock
	// record; only a symbol the provider does not know is an error
	// (ErrUnknownSymbol).
	GetStock(ctx context.Context, symbol string) (*models.StockDetail, error)
}

// PriceService serves historical candles
type PriceService interface {
	History(ctx context.Context, symbol string, from, to time.Time) *models.PriceHistory
}

// EarningsService serves the earnings calendar
type EarningsService interface {
	Calendar(ctx context.Context, from, to time.Time) *models.EarningsCalendar
}

// MarketClock reports exchange trading hours
type MarketClock interface {
	IsOpen(t time.Time) bool
}

// SymbolReference is the read-only symbol metadata and universe dataset
type SymbolReference interface {
	Lookup(symbol string) (models.SymbolMetadata, bool)
	Universe(name string) ([]string, bool)
}
