package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/stockdash/internal/common"
)

const surrealTable = "cache_entry"

// surrealRecord is one row of the cache_entry table. ExpiresAt is unix ms; 0 never expires.
type surrealRecord struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// SurrealStore is a cache backed by a SurrealDB table.
// Expiry is stored with the row and checked on read.
type SurrealStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	now    func() time.Time
}

// NewSurrealStore connects, signs in and ensures the cache table exists.
func NewSurrealStore(ctx context.Context, cfg common.SurrealConfig, logger *common.Logger) (*SurrealStore, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	store, err := newSurrealStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB cache connected")
	return store, nil
}

func newSurrealStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*SurrealStore, error) {
	// SurrealDB v3 errors on querying non-existent tables
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", surrealTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", surrealTable, err)
	}
	return &SurrealStore{db: db, logger: logger, now: time.Now}, nil
}

func (s *SurrealStore) Get(ctx context.Context, key string) ([]byte, error) {
	rec, err := surrealdb.Select[surrealRecord](ctx, s.db, surrealmodels.NewRecordID(surrealTable, key))
	if err != nil {
		return nil, fmt.Errorf("surrealdb select %s: %w", key, err)
	}
	if rec == nil || rec.Key == "" {
		return nil, ErrMiss
	}
	if rec.ExpiresAt > 0 && expired(time.UnixMilli(rec.ExpiresAt), s.now()) {
		return nil, ErrMiss
	}
	return []byte(rec.Value), nil
}

func (s *SurrealStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	rec := surrealRecord{Key: key, Value: string(value)}
	if exp := expiresAt(s.now(), ttl); !exp.IsZero() {
		rec.ExpiresAt = exp.UnixMilli()
	}

	sql := "UPSERT type::record($tb, $id) CONTENT $rec"
	vars := map[string]any{"tb": surrealTable, "id": key, "rec": rec}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]surrealRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to set cache entry %s after retries: %w", key, err)
		}
	}
	return nil
}

func (s *SurrealStore) Name() string {
	return BackendSurrealDB
}

func (s *SurrealStore) Close() error {
	return s.db.Close(context.Background())
}
