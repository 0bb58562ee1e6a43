package earnings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/models"
	"github.com/bobmcallan/stockdash/internal/storage/cache"
)

type mockClient struct {
	events []models.EarningsEvent
	err    error
	calls  int
}

func (m *mockClient) GetQuote(context.Context, string) (*models.Quote, error) { return nil, nil }
func (m *mockClient) GetMetrics(context.Context, string) (*models.Metrics, error) {
	return nil, nil
}
func (m *mockClient) GetCandles(context.Context, string, string, time.Time, time.Time) ([]models.Candle, error) {
	return nil, nil
}
func (m *mockClient) GetEarningsCalendar(_ context.Context, _, _ time.Time) ([]models.EarningsEvent, error) {
	m.calls++
	return m.events, m.err
}

var (
	from = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	to   = from.AddDate(0, 0, 14)
)

func newService(t *testing.T, client *mockClient) *Service {
	t.Helper()
	store, err := cache.NewBadgerStore(filepath.Join(t.TempDir(), "cache"), common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(client, store, []string{"AAPL", "MSFT", "NVDA"}, common.NewSilentLogger())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "earnings:2026-10-17:2026-10-31", CacheKey(from, to))
}

func TestCalendar_SortedAndCached(t *testing.T) {
	client := &mockClient{events: []models.EarningsEvent{
		{Symbol: "MSFT", Date: "2026-10-28"},
		{Symbol: "AAPL", Date: "2026-10-30"},
		{Symbol: "GOOGL", Date: "2026-10-28"},
	}}
	svc := newService(t, client)
	ctx := context.Background()

	cal := svc.Calendar(ctx, from, to)
	assert.Equal(t, models.SourceLive, cal.Source)
	assert.Equal(t, "2026-10-17", cal.From)
	assert.Equal(t, "2026-10-31", cal.To)
	require.Len(t, cal.Events, 3)
	assert.Equal(t, "GOOGL", cal.Events[0].Symbol)
	assert.Equal(t, "MSFT", cal.Events[1].Symbol)
	assert.Equal(t, "AAPL", cal.Events[2].Symbol)

	cal = svc.Calendar(ctx, from, to)
	assert.True(t, cal.Cached)
	assert.Equal(t, 1, client.calls)
	assert.Len(t, cal.Events, 3)
}

func TestCalendar_EmptyLiveIsValid(t *testing.T) {
	svc := newService(t, &mockClient{events: []models.EarningsEvent{}})
	cal := svc.Calendar(context.Background(), from, to)
	assert.Equal(t, models.SourceLive, cal.Source)
	assert.Empty(t, cal.Events)
}

func TestCalendar_FailureServesMock(t *testing.T) {
	client := &mockClient{err: errors.New("timeout")}
	svc := newService(t, client)

	cal := svc.Calendar(context.Background(), from, to)
	assert.Equal(t, models.SourceMock, cal.Source)
	assert.Len(t, cal.Events, 3)

	// Not cached: the next call retries the provider
	svc.Calendar(context.Background(), from, to)
	assert.Equal(t, 2, client.calls)
}
