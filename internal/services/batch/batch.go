// Package batch drives a per-symbol fetch across a symbol list in
// rate-limited chunks.
package batch

import (
	"context"
	"sync"
	"time"
)

// Scheduler partitions symbols into chunks of BatchSize, fetches each chunk
// concurrently and pauses Delay between chunks.
type Scheduler struct {
	BatchSize  int
	Delay      time.Duration
	MaxSymbols int // 0 means no limit

	// Sleep waits between chunks. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Stats describes one Run.
type Stats struct {
	Requested int
	Succeeded int
	Batches   int
	Sleeps    int
	Elapsed   time.Duration
	Cancelled bool
}

// FetchFunc fetches one symbol. ok is false when nothing usable came back.
type FetchFunc[T any] func(ctx context.Context, symbol string) (T, bool)

// Run fetches every symbol and returns the successes in input order.
// Chunks run strictly one after another; a cancelled context stops the run
// at the next pause, after the in-flight chunk completes.
func Run[T any](ctx context.Context, s Scheduler, symbols []string, fetch FetchFunc[T]) ([]T, Stats) {
	start := time.Now()

	symbols = s.Truncate(symbols)
	size := s.BatchSize
	if size <= 0 {
		size = len(symbols)
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	stats := Stats{Requested: len(symbols)}
	results := make([]T, len(symbols))
	ok := make([]bool, len(symbols))

	for lo := 0; lo < len(symbols); lo += size {
		if lo > 0 {
			stats.Sleeps++
			if err := sleep(ctx, s.Delay); err != nil {
				stats.Cancelled = true
				break
			}
		}

		hi := lo + size
		if hi > len(symbols) {
			hi = len(symbols)
		}
		stats.Batches++

		var wg sync.WaitGroup
		for i := lo; i < hi; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], ok[i] = fetch(ctx, symbols[i])
			}(i)
		}
		wg.Wait()
	}

	out := make([]T, 0, len(symbols))
	for i := range results {
		if ok[i] {
			out = append(out, results[i])
		}
	}
	stats.Succeeded = len(out)
	stats.Elapsed = time.Since(start)
	return out, stats
}

// Truncate caps symbols at MaxSymbols, keeping the leading entries.
func (s Scheduler) Truncate(symbols []string) []string {
	if s.MaxSymbols > 0 && len(symbols) > s.MaxSymbols {
		return symbols[:s.MaxSymbols]
	}
	return symbols
}

// Chunks returns the number of chunks Run would issue for n symbols.
func (s Scheduler) Chunks(n int) int {
	if s.MaxSymbols > 0 && n > s.MaxSymbols {
		n = s.MaxSymbols
	}
	if n == 0 {
		return 0
	}
	if s.BatchSize <= 0 {
		return 1
	}
	return (n + s.BatchSize - 1) / s.BatchSize
}

// EstimatedDuration is the minimum wall time of a run over n symbols,
// counting pauses only.
func (s Scheduler) EstimatedDuration(n int) time.Duration {
	c := s.Chunks(n)
	if c <= 1 {
		return 0
	}
	return time.Duration(c-1) * s.Delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
