// internal/cache/cache.go
package cache

import (
	"context"
	"time"
)

// Cache is a small byte-oriented cache used for derived read models
// (dashboard stats). Persistence is never behind it; a cold or broken cache
// only costs a recompute.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Noop struct{}

func (Noop) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Noop) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
