package cache

import (
	"context"
	"time"
)

// NopStore is an always-miss cache. Writes are discarded.
type NopStore struct{}

// NewNopStore returns an always-miss store
func NewNopStore() *NopStore {
	return &NopStore{}
}

func (NopStore) Get(context.Context, string) ([]byte, error) {
	return nil, ErrMiss
}

func (NopStore) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NopStore) Name() string {
	return BackendNone
}

func (NopStore) Close() error {
	return nil
}
