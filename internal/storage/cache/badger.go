package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/stockdash/internal/common"
)

type badgerRecord struct {
	Value     []byte
	ExpiresAt time.Time
}

// BadgerStore is an embedded cache for single-process deployments.
// Expiry is stored with the record and checked on read.
type BadgerStore struct {
	db     *badgerhold.Store
	logger *common.Logger
	now    func() time.Time
}

// NewBadgerStore opens (or creates) the store at path.
func NewBadgerStore(path string, logger *common.Logger) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("Badger cache opened")
	return &BadgerStore{db: db, logger: logger, now: time.Now}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var rec badgerRecord
	if err := s.db.Get(key, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("badger get %s: %w", key, err)
	}
	if expired(rec.ExpiresAt, s.now()) {
		if err := s.db.Delete(key, badgerRecord{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			s.logger.Debug().Str("key", key).Err(err).Msg("Failed to evict expired cache entry")
		}
		return nil, ErrMiss
	}
	return rec.Value, nil
}

func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	rec := badgerRecord{Value: value, ExpiresAt: expiresAt(s.now(), ttl)}
	if err := s.db.Upsert(key, rec); err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Name() string {
	return BackendBadger
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
