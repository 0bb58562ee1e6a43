package stocks

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/models"
	"github.com/bobmcallan/stockdash/internal/reference"
	"github.com/bobmcallan/stockdash/internal/storage/cache"
)

// fakeClient serves quotes and metrics from maps. Symbols absent from
// quotes fail; calls are counted.
type fakeClient struct {
	mu      sync.Mutex
	quotes  map[string]*models.Quote
	metrics map[string]*models.Metrics
	calls   int32
	block   chan struct{}
}

func (f *fakeClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, errors.New("connection reset")
	}
	return q, nil
}

func (f *fakeClient) GetMetrics(ctx context.Context, symbol string) (*models.Metrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.metrics[symbol]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (f *fakeClient) quoteCalls() int {
	return int(atomic.LoadInt32(&f.calls))
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		quotes: map[string]*models.Quote{
			"AAPL": {Current: 180, Change: models.Float(1.5), ChangePercent: models.Float(0.84), High: 181, Low: 178},
			"MSFT": {Current: 410, Change: models.Float(-2), ChangePercent: models.Float(-0.49), High: 415, Low: 405},
			"NVDA": {Current: 120, Change: models.Float(3), ChangePercent: models.Float(2.5), High: 121, Low: 117},
			"ZZZZ": {Current: 0},
		},
		metrics: map[string]*models.Metrics{
			"AAPL": {MarketCapitalization: models.Float(2800000), PETTM: models.Float(29)},
			"MSFT": {MarketCapitalization: models.Float(3100000)},
			"NVDA": {MarketCapitalization: models.Float(2950000)},
		},
	}
}

func testConfig() common.PipelineConfig {
	return common.PipelineConfig{
		Universe:   "test",
		CacheKey:   "stocks:test",
		TTL:        "10m",
		BatchSize:  2,
		BatchDelay: "1ms",
	}
}

func newTestStore(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := cache.NewRedisStore(context.Background(), common.RedisConfig{Address: mr.Addr()}, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func symbolsOf(list *models.StockList) []string {
	out := make([]string, len(list.Data))
	for i, r := range list.Data {
		out[i] = r.Symbol
	}
	return out
}

func TestPipeline_LiveSortedAndFiltered(t *testing.T) {
	client := newFakeClient()
	store, _ := newTestStore(t)
	p := NewPipeline(testConfig(), []string{"AAPL", "ZZZZ", "MSFT", "NVDA", "FAIL"}, client, reference.Default(), store, common.NewSilentLogger())

	list := p.Get(context.Background(), false)

	assert.Equal(t, models.SourceLive, list.Source)
	assert.False(t, list.Cached)
	assert.Equal(t, "test", list.Universe)
	assert.Equal(t, []string{"MSFT", "NVDA", "AAPL"}, symbolsOf(list))
	assert.Equal(t, 3, list.StockCount)
	assert.Equal(t, 2.8e12, list.Data[2].MarketCap)
	assert.Equal(t, "Apple Inc.", list.Data[2].Name)
	assert.Empty(t, list.Message)
}

func TestPipeline_IdempotentWithinTTL(t *testing.T) {
	client := newFakeClient()
	store, _ := newTestStore(t)
	p := NewPipeline(testConfig(), []string{"AAPL", "MSFT", "NVDA"}, client, reference.Default(), store, common.NewSilentLogger())
	ctx := context.Background()

	first := p.Get(ctx, false)
	calls := client.quoteCalls()
	second := p.Get(ctx, false)

	assert.Equal(t, calls, client.quoteCalls(), "second call must not re-fetch")
	assert.True(t, second.Cached)

	a, err := json.Marshal(first.Data)
	require.NoError(t, err)
	b, err := json.Marshal(second.Data)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestPipeline_ExpiredEntryRefetches(t *testing.T) {
	client := newFakeClient()
	store, _ := newTestStore(t)
	p := NewPipeline(testConfig(), []string{"AAPL"}, client, reference.Default(), store, common.NewSilentLogger())
	ctx := context.Background()

	now := time.Now()
	p.now = func() time.Time { return now }
	p.Get(ctx, false)
	calls := client.quoteCalls()

	now = now.Add(11 * time.Minute)
	list := p.Get(ctx, false)
	assert.False(t, list.Cached)
	assert.Greater(t, client.quoteCalls(), calls)
}

func TestPipeline_ShorterReaderTTLTreatsEntryAsMiss(t *testing.T) {
	client := newFakeClient()
	store, _ := newTestStore(t)
	ctx := context.Background()

	long := testConfig()
	long.TTL = "1h"
	writer := NewPipeline(long, []string{"AAPL"}, client, nil, store, common.NewSilentLogger())

	short := testConfig()
	short.TTL = "5m"
	reader := NewPipeline(short, []string{"AAPL"}, client, nil, store, common.NewSilentLogger())

	now := time.Now()
	writer.now = func() time.Time { return now }
	reader.now = func() time.Time { return now.Add(20 * time.Minute) }

	writer.Get(ctx, false)
	calls := client.quoteCalls()

	list := reader.Get(ctx, false)
	assert.False(t, list.Cached)
	assert.Greater(t, client.quoteCalls(), calls)
}

func TestPipeline_TotalFailureServesMock(t *testing.T) {
	client := &fakeClient{quotes: map[string]*models.Quote{}, metrics: map[string]*models.Metrics{}}
	store, mr := newTestStore(t)
	symbols := []string{"AAPL", "MSFT", "NVDA"}
	p := NewPipeline(testConfig(), symbols, client, reference.Default(), store, common.NewSilentLogger())

	list := p.Get(context.Background(), false)

	assert.Equal(t, models.SourceMock, list.Source)
	assert.NotEmpty(t, list.Data)
	assert.Len(t, list.Data, 3)
	assert.NotEmpty(t, list.Message)
	assert.False(t, mr.Exists("stocks:test"), "mock data must not be cached")
}

func TestPipeline_UnavailableStoreNeverFails(t *testing.T) {
	client := newFakeClient()
	mr := miniredis.RunT(t)
	store, err := cache.NewRedisStore(context.Background(), common.RedisConfig{Address: mr.Addr()}, common.NewSilentLogger())
	require.NoError(t, err)
	mr.Close()

	resilient := cache.NewResilient(store, common.NewSilentLogger())
	p := NewPipeline(testConfig(), []string{"AAPL", "MSFT"}, client, nil, resilient, common.NewSilentLogger())

	list := p.Get(context.Background(), false)
	assert.Equal(t, models.SourceLive, list.Source)
	assert.Len(t, list.Data, 2)
}

func TestPipeline_NilStore(t *testing.T) {
	p := NewPipeline(testConfig(), []string{"AAPL"}, newFakeClient(), nil, nil, common.NewSilentLogger())
	list := p.Get(context.Background(), false)
	assert.Equal(t, models.SourceLive, list.Source)
}

func TestPipeline_ForceBypassesCache(t *testing.T) {
	client := newFakeClient()
	store, _ := newTestStore(t)
	p := NewPipeline(testConfig(), []string{"AAPL"}, client, nil, store, common.NewSilentLogger())
	ctx := context.Background()

	p.Get(ctx, false)
	calls := client.quoteCalls()

	list := p.Refresh(ctx)
	assert.False(t, list.Cached)
	assert.Greater(t, client.quoteCalls(), calls)
}

func TestPipeline_ConcurrentRefreshShared(t *testing.T) {
	client := newFakeClient()
	client.block = make(chan struct{})
	p := NewPipeline(testConfig(), []string{"AAPL"}, client, nil, nil, common.NewSilentLogger())

	var wg sync.WaitGroup
	results := make([]*models.StockList, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Get(context.Background(), true)
		}(i)
	}

	// Let every caller reach the singleflight group before releasing the fetch
	require.Eventually(t, func() bool { return client.quoteCalls() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(client.block)
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, models.SourceLive, r.Source)
	}
	assert.Equal(t, 1, client.quoteCalls())
}

func TestPipeline_MaxSymbols(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSymbols = 2
	p := NewPipeline(cfg, []string{"AAPL", "MSFT", "NVDA"}, newFakeClient(), nil, nil, common.NewSilentLogger())

	assert.Equal(t, []string{"AAPL", "MSFT"}, p.Symbols())
	assert.Equal(t, 2, p.sched.MaxSymbols)
	list := p.Get(context.Background(), false)
	assert.Len(t, list.Data, 2)
}

func TestPipeline_CallerDeadlineDoesNotCutSharedRefresh(t *testing.T) {
	client := newFakeClient()
	store, mr := newTestStore(t)
	cfg := testConfig()
	cfg.BatchSize = 1
	cfg.BatchDelay = "100ms"
	p := NewPipeline(cfg, []string{"AAPL", "MSFT", "NVDA"}, client, reference.Default(), store, common.NewSilentLogger())

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	var first, joined *models.StockList
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = p.Get(short, false)
	}()
	require.Eventually(t, func() bool { return client.quoteCalls() >= 1 }, time.Second, time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		joined = p.Get(context.Background(), false)
	}()
	wg.Wait()

	for _, list := range []*models.StockList{first, joined} {
		require.NotNil(t, list)
		assert.Equal(t, models.SourceLive, list.Source)
		assert.Len(t, list.Data, 3)
		assert.Empty(t, list.Message)
		assert.False(t, list.Partial)
	}
	assert.True(t, mr.Exists("stocks:test"))

	later := p.Get(context.Background(), false)
	assert.True(t, later.Cached)
	assert.Len(t, later.Data, 3)
}

func TestPipeline_TimedOutRefreshNotCached(t *testing.T) {
	client := newFakeClient()
	store, mr := newTestStore(t)
	cfg := testConfig()
	cfg.BatchSize = 1
	cfg.BatchDelay = "200ms"
	p := NewPipeline(cfg, []string{"AAPL", "MSFT", "NVDA"}, client, reference.Default(), store, common.NewSilentLogger())
	p.timeout = 30 * time.Millisecond

	list := p.Get(context.Background(), false)

	assert.Equal(t, models.SourceLive, list.Source)
	assert.Equal(t, []string{"AAPL"}, symbolsOf(list))
	assert.Equal(t, partialMessage, list.Message)
	assert.True(t, list.Partial)
	assert.False(t, mr.Exists("stocks:test"), "a partial refresh must not be cached")
	assert.Equal(t, 1, client.quoteCalls())
}
