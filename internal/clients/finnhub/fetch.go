package finnhub

import (
	"context"
	"sync"

	"github.com/bobmcallan/stockdash/internal/interfaces"
	"github.com/bobmcallan/stockdash/internal/models"
)

// Result is either a value or the error that prevented it.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result holds a value.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// SymbolData is the outcome of fetching quote and metrics for one symbol.
type SymbolData struct {
	Symbol  string
	QuoteR  Result[*models.Quote]
	MetricR Result[*models.Metrics]
}

// Quote returns the quote, or nil if its fetch failed.
func (d SymbolData) Quote() *models.Quote {
	if !d.QuoteR.OK() {
		return nil
	}
	return d.QuoteR.Value
}

// Metrics returns the metrics, or nil if their fetch failed.
func (d SymbolData) Metrics() *models.Metrics {
	if !d.MetricR.OK() {
		return nil
	}
	return d.MetricR.Value
}

// FetchSymbol issues the quote and metrics calls concurrently. It never fails:
// each failure is recorded on its sub-result.
func FetchSymbol(ctx context.Context, api interfaces.QuoteMetricsClient, symbol string) SymbolData {
	data := SymbolData{Symbol: symbol}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		q, err := api.GetQuote(ctx, symbol)
		data.QuoteR = Result[*models.Quote]{Value: q, Err: err}
	}()
	go func() {
		defer wg.Done()
		m, err := api.GetMetrics(ctx, symbol)
		data.MetricR = Result[*models.Metrics]{Value: m, Err: err}
	}()
	wg.Wait()

	return data
}
