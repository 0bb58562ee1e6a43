package app

import (
	"context"
	"time"

	"github.com/bobmcallan/stockdash/internal/models"
)

// RefreshResult summarizes one pipeline's forced refresh.
type RefreshResult struct {
	Universe   string `json:"universe"`
	Source     string `json:"source"`
	StockCount int    `json:"stockCount"`
	ElapsedMs  int64  `json:"elapsedMs"`
	Partial    bool   `json:"partial,omitempty"`
}

// RefreshAll force-refreshes every pipeline in config order. Pipelines run
// one after another so they share the provider rate limit.
func (a *App) RefreshAll(ctx context.Context) []RefreshResult {
	pipelines := a.Stocks.All()
	results := make([]RefreshResult, 0, len(pipelines))

	for _, p := range pipelines {
		if ctx.Err() != nil {
			a.Logger.Warn().Str("universe", p.Universe()).Msg("Refresh cancelled")
			break
		}
		start := time.Now()
		list := p.Refresh(ctx)
		results = append(results, RefreshResult{
			Universe:   p.Universe(),
			Source:     list.Source,
			StockCount: list.StockCount,
			ElapsedMs:  time.Since(start).Milliseconds(),
			Partial:    list.Partial,
		})
		if list.Source == models.SourceMock {
			a.Logger.Warn().Str("universe", p.Universe()).Msg("Refresh produced no live data")
		}
	}
	return results
}
