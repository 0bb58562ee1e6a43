package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockdash/internal/common"
	tcommon "github.com/bobmcallan/stockdash/tests/common"
)

func newSurrealStore(t *testing.T) *SurrealStore {
	t.Helper()
	tcommon.RequireDocker(t)

	sc := tcommon.StartSurrealDB(t)
	cfg := common.SurrealConfig{
		Address:   sc.Address(),
		Username:  "root",
		Password:  "root",
		Namespace: "stockdash_test",
		Database:  fmt.Sprintf("cache_%d", time.Now().UnixNano()%100000),
	}
	store, err := NewSurrealStore(context.Background(), cfg, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSurrealStore_SetGet(t *testing.T) {
	store := newSurrealStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stocks:market", []byte(`{"timestamp":1,"data":[]}`), 10*time.Minute))

	val, err := store.Get(ctx, "stocks:market")
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":1,"data":[]}`, string(val))

	require.NoError(t, store.Set(ctx, "stocks:market", []byte(`{"timestamp":2,"data":[]}`), 10*time.Minute))
	val, err = store.Get(ctx, "stocks:market")
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":2,"data":[]}`, string(val))
}

func TestSurrealStore_Expiry(t *testing.T) {
	store := newSurrealStore(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(ctx, "k")
	assert.Error(t, err)
}

func TestSurrealStore_Missing(t *testing.T) {
	store := newSurrealStore(t)
	_, err := store.Get(context.Background(), "absent")
	assert.Error(t, err)
}
