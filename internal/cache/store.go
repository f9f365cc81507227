package cache

import (
	"context"
	"time"
)

// URLStore holds short-lived string values such as presigned URLs.
// A miss is never an error: callers fall back to the slow path.
type URLStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// LRUStore is the process-local URLStore backed by a TimedLRU.
type LRUStore struct {
	lru *TimedLRU[string, string]
}

func NewLRUStore(lru *TimedLRU[string, string]) *LRUStore {
	return &LRUStore{lru: lru}
}

func (s *LRUStore) Get(_ context.Context, key string) (string, bool) {
	return s.lru.Get(key)
}

func (s *LRUStore) Set(_ context.Context, key, value string, ttl time.Duration) {
	s.lru.SetWithTimeout(key, value, ttl)
}

func (s *LRUStore) Delete(_ context.Context, key string) {
	s.lru.Delete(key)
}
