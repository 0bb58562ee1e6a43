package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockdash/internal/common"
	"github.com/bobmcallan/stockdash/internal/models"
)

// failingStore errors on every call
type failingStore struct {
	sets int
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (f *failingStore) Set(context.Context, string, []byte, time.Duration) error {
	f.sets++
	return errors.New("connection refused")
}

func (f *failingStore) Name() string { return "failing" }
func (f *failingStore) Close() error { return nil }

func TestPutGetEntry_RoundTrip(t *testing.T) {
	store := newBadgerStore(t)
	ctx := context.Background()
	created := time.UnixMilli(1760000000000)

	list := []models.StockRecord{{Symbol: "AAPL", MarketCap: 3e12, PE: models.Float(28.1)}}
	require.NoError(t, PutEntry(ctx, store, "stocks:market", list, created, time.Hour))

	entry, err := GetEntry[[]models.StockRecord](ctx, store, "stocks:market")
	require.NoError(t, err)
	assert.Equal(t, int64(1760000000000), entry.Timestamp)
	require.Len(t, entry.Data, 1)
	assert.Equal(t, "AAPL", entry.Data[0].Symbol)
	assert.Equal(t, 28.1, *entry.Data[0].PE)
	assert.Nil(t, entry.Data[0].EPS)
}

func TestGetFresh_ReaderTTL(t *testing.T) {
	store := newBadgerStore(t)
	ctx := context.Background()
	created := time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)

	// Written with a 1h store expiry
	require.NoError(t, PutEntry(ctx, store, "k", "v", created, time.Hour))

	// A reader with a 10m TTL sees a stale entry 15m later
	_, err := GetFresh[string](ctx, store, "k", 10*time.Minute, created.Add(15*time.Minute))
	assert.True(t, errors.Is(err, ErrMiss))

	// A reader with a 1h TTL does not
	entry, err := GetFresh[string](ctx, store, "k", time.Hour, created.Add(15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "v", entry.Data)
}

func TestGetEntry_CorruptPayload(t *testing.T) {
	store := newBadgerStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("not json"), time.Hour))

	_, err := GetEntry[string](ctx, store, "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMiss))
}

func TestNopStore(t *testing.T) {
	store := NewNopStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))
	_, err := store.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))
	assert.Equal(t, BackendNone, store.Name())
}

func TestResilient_ErrorsBecomeMisses(t *testing.T) {
	inner := &failingStore{}
	store := NewResilient(inner, common.NewSilentLogger())
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrMiss))

	assert.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))
	assert.Equal(t, 1, inner.sets)
	assert.Equal(t, "failing", store.Name())
}

func TestNew_Selection(t *testing.T) {
	logger := common.NewSilentLogger()
	ctx := context.Background()

	t.Run("redis without credentials degrades", func(t *testing.T) {
		store := New(ctx, common.CacheConfig{Backend: "redis"}, logger)
		assert.Equal(t, BackendNone, store.Name())
	})

	t.Run("surrealdb without credentials degrades", func(t *testing.T) {
		store := New(ctx, common.CacheConfig{Backend: "surrealdb", SurrealDB: common.SurrealConfig{Address: "ws://localhost:1/rpc"}}, logger)
		assert.Equal(t, BackendNone, store.Name())
	})

	t.Run("unreachable redis degrades", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		store := New(ctx, common.CacheConfig{Backend: "redis", Redis: common.RedisConfig{Address: addr}}, logger)
		assert.Equal(t, BackendNone, store.Name())
	})

	t.Run("unknown backend degrades", func(t *testing.T) {
		store := New(ctx, common.CacheConfig{Backend: "memcached"}, logger)
		assert.Equal(t, BackendNone, store.Name())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store := New(ctx, common.CacheConfig{Backend: "REDIS", Redis: common.RedisConfig{URL: "redis://" + mr.Addr()}}, logger)
		defer store.Close()
		assert.Equal(t, BackendRedis, store.Name())
		_, ok := store.(*Resilient)
		assert.True(t, ok)
	})

	t.Run("badger", func(t *testing.T) {
		store := New(ctx, common.CacheConfig{Backend: "badger", Badger: common.BadgerConfig{Path: t.TempDir()}}, logger)
		defer store.Close()
		assert.Equal(t, BackendBadger, store.Name())
	})
}
