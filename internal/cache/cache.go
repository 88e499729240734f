// Package cache provides the TTL stores injected into consumers such as the
// branch locator.
package cache

import (
	"context"
	"time"
)

// Store is a key/value cache with per-entry TTL. Get reports false on a miss
// or an expired entry. Set with ttl <= 0 stores nothing and drops any
// existing entry for the key.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time
