// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// Redis stores JSON-encoded values under a key prefix so several service
// instances share one cache. Redis failures are logged and read as misses.
type Redis[V any] struct {
	client redis.UniversalClient
	prefix string
	log    logger.Logger
}

func NewRedis[V any](client redis.UniversalClient, prefix string, log logger.Logger) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix, log: log}
}

func (r *Redis[V]) key(k string) string {
	return r.prefix + k
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V

	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("cache get failed", map[string]interface{}{"key": key, "error": err})
			metrics.CacheLookups.WithLabelValues("redis", "error").Inc()
			return zero, false
		}
		metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return zero, false
	}

	var value V
	if err := json.Unmarshal(raw, &value); err != nil {
		r.log.Warn("cache entry undecodable, dropping", map[string]interface{}{"key": key, "error": err})
		r.Delete(ctx, key)
		metrics.CacheLookups.WithLabelValues("redis", "error").Inc()
		return zero, false
	}
	metrics.CacheLookups.WithLabelValues("redis", "hit").Inc()
	return value, true
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		// go-redis reads a zero expiration as "keep forever"
		r.Delete(ctx, key)
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		r.log.Warn("cache encode failed", map[string]interface{}{"key": key, "error": err})
		return
	}
	if err := r.client.Set(ctx, r.key(key), raw, ttl).Err(); err != nil {
		r.log.Warn("cache set failed", map[string]interface{}{"key": key, "error": err})
	}
}

func (r *Redis[V]) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.log.Warn("cache delete failed", map[string]interface{}{"key": key, "error": err})
	}
}

// Clear removes every key under the prefix.
func (r *Redis[V]) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("cache scan failed", map[string]interface{}{"prefix": r.prefix, "error": err})
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn("cache clear failed", map[string]interface{}{"prefix": r.prefix, "error": err})
	}
}
