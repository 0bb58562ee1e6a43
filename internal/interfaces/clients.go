// Package interfaces defines service contracts for stockdash
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/stockdash/internal/models"
)

// QuoteMetricsClient fetches per-symbol quote and fundamentals
type QuoteMetricsClient interface {
	// GetQuote retrieves the current quote for a symbol
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetMetrics retrieves fundamental ratios for a symbol
	GetMetrics(ctx context.Context, symbol string) (*models.Metrics, error)
}

// FinnhubClient provides access to the Finnhub API
type FinnhubClient interface {
	QuoteMetricsClient

	// GetCandles retrieves OHLCV bars at the given resolution (D, W, M, 1, 5, ...)
	GetCandles(ctx context.Context, symbol, resolution string, from, to time.Time) ([]models.Candle, error)

	// GetEarningsCalendar retrieves earnings events between two dates (inclusive)
	GetEarningsCalendar(ctx context.Context, from, to time.Time) ([]models.EarningsEvent, error)
}
