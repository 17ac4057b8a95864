// Package cache stores short-lived computed values (sentiment sub-scores)
// in Redis or in process memory.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"
)

// Store is a byte-oriented key/value cache with expiry. A miss is reported
// as ok == false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &MemoryStore{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	s.c.Set(key, value, ttl)
	return nil
}

// Open returns a Redis-backed store when redisURL is set and reachable,
// and a MemoryStore otherwise.
func Open(ctx context.Context, redisURL string, defaultTTL time.Duration) Store {
	if redisURL == "" {
		log.Info("REDIS_URL not set; using in-memory sentiment cache")
		return NewMemoryStore(defaultTTL)
	}
	store, err := NewRedisStore(ctx, redisURL)
	if err != nil {
		log.Warn("Redis unavailable; falling back to in-memory cache", "err", err)
		return NewMemoryStore(defaultTTL)
	}
	return store
}

// GetJSON decodes a cached JSON value into dst.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	b, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, err
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, b, ttl)
}
