package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbols(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("S%02d", i)
	}
	return out
}

type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, d)
	return ctx.Err()
}

func TestRun_ChunksAndSleeps(t *testing.T) {
	rec := &sleepRecorder{}
	s := Scheduler{BatchSize: 5, Delay: 12 * time.Second, Sleep: rec.sleep}

	out, stats := Run(context.Background(), s, symbols(23), func(ctx context.Context, sym string) (string, bool) {
		return sym, true
	})

	assert.Len(t, out, 23)
	assert.Equal(t, 5, stats.Batches)
	assert.Equal(t, 4, stats.Sleeps)
	assert.Equal(t, 23, stats.Requested)
	assert.Equal(t, 23, stats.Succeeded)
	require.Len(t, rec.calls, 4)
	for _, d := range rec.calls {
		assert.Equal(t, 12*time.Second, d)
	}
	assert.Equal(t, 5, s.Chunks(23))
	assert.Equal(t, 48*time.Second, s.EstimatedDuration(23))
}

func TestRun_PreservesOrderAndDropsFailures(t *testing.T) {
	s := Scheduler{BatchSize: 3, Sleep: (&sleepRecorder{}).sleep}
	in := []string{"A", "BAD1", "C", "D", "BAD2", "F", "G"}

	out, stats := Run(context.Background(), s, in, func(ctx context.Context, sym string) (string, bool) {
		// Later symbols in a chunk finish first
		if sym == "A" || sym == "D" {
			time.Sleep(10 * time.Millisecond)
		}
		return strings.ToLower(sym), !strings.HasPrefix(sym, "BAD")
	})

	assert.Equal(t, []string{"a", "c", "d", "f", "g"}, out)
	assert.Equal(t, 5, stats.Succeeded)
	assert.Equal(t, 3, stats.Batches)
}

func TestRun_MaxSymbolsTruncates(t *testing.T) {
	s := Scheduler{BatchSize: 5, MaxSymbols: 7, Sleep: (&sleepRecorder{}).sleep}
	var calls int32

	out, stats := Run(context.Background(), s, symbols(20), func(ctx context.Context, sym string) (string, bool) {
		atomic.AddInt32(&calls, 1)
		return sym, true
	})

	assert.Len(t, out, 7)
	assert.Equal(t, int32(7), calls)
	assert.Equal(t, 2, stats.Batches)
	assert.Equal(t, 1, stats.Sleeps)
}

func TestScheduler_Truncate(t *testing.T) {
	assert.Equal(t, []string{"S00", "S01"}, Scheduler{MaxSymbols: 2}.Truncate(symbols(4)))
	assert.Len(t, Scheduler{}.Truncate(symbols(4)), 4)
	assert.Len(t, Scheduler{MaxSymbols: 9}.Truncate(symbols(4)), 4)
}

func TestRun_SingleChunkNeverSleeps(t *testing.T) {
	rec := &sleepRecorder{}
	s := Scheduler{BatchSize: 10, Delay: time.Hour, Sleep: rec.sleep}

	_, stats := Run(context.Background(), s, symbols(10), func(ctx context.Context, sym string) (int, bool) {
		return 1, true
	})

	assert.Equal(t, 1, stats.Batches)
	assert.Equal(t, 0, stats.Sleeps)
	assert.Empty(t, rec.calls)
}

func TestRun_EmptyInput(t *testing.T) {
	out, stats := Run(context.Background(), Scheduler{BatchSize: 5}, nil, func(ctx context.Context, sym string) (int, bool) {
		t.Fatal("fetch called")
		return 0, false
	})
	assert.Empty(t, out)
	assert.Equal(t, 0, stats.Batches)
}

func TestRun_AllFail(t *testing.T) {
	s := Scheduler{BatchSize: 2, Sleep: (&sleepRecorder{}).sleep}
	out, stats := Run(context.Background(), s, symbols(4), func(ctx context.Context, sym string) (int, bool) {
		return 0, false
	})
	assert.Empty(t, out)
	assert.Equal(t, 0, stats.Succeeded)
	assert.Equal(t, 2, stats.Batches)
}

func TestRun_ChunkConcurrency(t *testing.T) {
	var inFlight, peak int32
	s := Scheduler{BatchSize: 4, Sleep: (&sleepRecorder{}).sleep}

	Run(context.Background(), s, symbols(8), func(ctx context.Context, sym string) (int, bool) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return 1, true
	})

	// Chunks never overlap
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
}

func TestRun_CancelStopsAtPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := Scheduler{BatchSize: 2, Delay: time.Hour}

	start := time.Now()
	out, stats := Run(ctx, s, symbols(6), func(ctx context.Context, sym string) (string, bool) {
		cancel()
		return sym, true
	})

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, stats.Cancelled)
	assert.Equal(t, 1, stats.Batches)
	assert.Len(t, out, 2)
}
