package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
)

const warmCacheTimeout = 10 * time.Minute

// warmCache loads each pipeline once so the first page view is served from cache.
// Pipelines whose cached list is still fresh are not re-fetched.
func warmCache[S interfaces.StockService](ctx context.Context, pipelines []S, logger *common.Logger) {
	// Check env var override
	if os.Getenv("STOCKDASH_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via STOCKDASH_WARM_CACHE=off")
		return
	}

	start := time.Now()
	logger.Info().Int("pipelines", len(pipelines)).Msg("Warm cache: starting")

	for _, p := range pipelines {
		if ctx.Err() != nil {
			logger.Warn().Msg("Warm cache: cancelled")
			return
		}
		list := p.Get(ctx, false)
		logger.Info().
			Str("universe", p.Universe()).
			Str("source", list.Source).
			Bool("cached", list.Cached).
			Int("stocks", list.StockCount).
			Msg("Warm cache: pipeline ready")
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("Warm cache: complete")
}
