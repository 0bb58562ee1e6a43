// Command stockdash-refresh force-refreshes every configured stock pipeline
// once and prints the results as JSON. It is the entry point for cron jobs
// that cannot call /api/cron/refresh.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bobmcallan/stockdash/internal/app"
	"github.com/bobmcallan/stockdash/internal/models"
)

const defaultTimeout = 15 * time.Minute

func main() {
	a, err := app.NewApp(os.Getenv("STOCKDASH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout())

	code := run(ctx, a, os.Stdout)

	cancel()
	stop()
	a.Close()
	os.Exit(code)
}

// timeout reads STOCKDASH_REFRESH_TIMEOUT, falling back to defaultTimeout.
func timeout() time.Duration {
	if d, err := time.ParseDuration(os.Getenv("STOCKDASH_REFRESH_TIMEOUT")); err == nil && d > 0 {
		return d
	}
	return defaultTimeout
}

// run refreshes all pipelines and writes the results to w. The exit code is
// 1 when any pipeline fell back to demo data or was not reached.
func run(ctx context.Context, a *app.App, w io.Writer) int {
	start := time.Now()
	results := a.RefreshAll(ctx)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to write refresh results")
		return 1
	}

	code := exitCode(results, len(a.Stocks.Universes()))

	a.Logger.Info().
		Int("pipelines", len(results)).
		Dur("elapsed", time.Since(start)).
		Int("exit_code", code).
		Msg("Refresh finished")
	return code
}

// exitCode is 1 unless every pipeline was reached and refreshed fully live.
func exitCode(results []app.RefreshResult, pipelines int) int {
	if len(results) < pipelines {
		return 1
	}
	for _, r := range results {
		if r.Source != models.SourceLive || r.Partial {
			return 1
		}
	}
	return 0
}
