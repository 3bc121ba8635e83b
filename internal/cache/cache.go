// Package cache stores encoded resolution inputs (role catalog, user records, route table)
// between requests. Values are opaque bytes; callers own the encoding.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/portal-access/portal-access/internal/config"
)

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache miss")
	// ErrUnknownBackend is returned when the configured backend is not supported.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

const (
	// BackendMemory keeps entries in a process-local LRU.
	BackendMemory = "memory"
	// BackendRedis keeps entries in a shared redis instance.
	BackendRedis = "redis"

	defaultSize = 1024
	defaultTTL  = 5 * time.Minute
)

// Cache is a byte cache with a backend-wide TTL.
type Cache interface {
	// Get returns the value stored under key or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// New builds the cache selected by cfg.
func New(ctx context.Context, cfg config.Cache) (Cache, error) {
	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}

	switch cfg.Backend {
	case "", BackendMemory:
		size := cfg.Size
		if size <= 0 {
			size = defaultSize
		}

		return NewMemory(size, ttl), nil
	case BackendRedis:
		r, err := NewRedis(ctx, cfg.RedisAddr, cfg.Prefix, ttl)
		if err != nil {
			return nil, err
		}

		return r, nil
	default:
		return nil, ErrUnknownBackend
	}
}
