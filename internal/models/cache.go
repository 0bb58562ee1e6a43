package models

import "time"

// CacheEntry wraps a cached payload with its creation time (unix ms).
type CacheEntry[T any] struct {
	Timestamp int64 `json:"timestamp"`
	Data      T     `json:"data"`
}

// NewCacheEntry stamps data with the given creation time.
func NewCacheEntry[T any](data T, created time.Time) *CacheEntry[T] {
	return &CacheEntry[T]{Timestamp: created.UnixMilli(), Data: data}
}

// Created returns the entry's creation time.
func (e *CacheEntry[T]) Created() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// FreshAt reports whether the entry is younger than ttl at now.
// Each reader applies its own TTL; the writer's TTL is not stored.
func (e *CacheEntry[T]) FreshAt(now time.Time, ttl time.Duration) bool {
	if e == nil || e.Timestamp == 0 {
		return false
	}
	return now.Sub(e.Created()) < ttl
}
