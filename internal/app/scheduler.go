package app

import (
	"context"
	"time"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/interfaces"
)

// startRefreshScheduler calls refresh on a fixed interval until ctx is done.
// With a non-nil clock, ticks while the market is closed are skipped.
func startRefreshScheduler[R any](ctx context.Context, refresh func(context.Context) []R, clock interfaces.MarketClock, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Bool("market_hours_only", clock != nil).Msg("Refresh scheduler: started")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh scheduler: stopped")
			return
		case now := <-ticker.C:
			if clock != nil && !clock.IsOpen(now) {
				logger.Debug().Msg("Refresh scheduler: market closed, skipping")
				continue
			}
			start := time.Now()
			results := refresh(ctx)
			logger.Info().
				Int("pipelines", len(results)).
				Dur("elapsed", time.Since(start)).
				Msg("Refresh scheduler: complete")
		}
	}
}
