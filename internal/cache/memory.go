// internal/cache/memory.go
package cache

import (
	"context"
	"sync"
	"time"

	"loan-origination/internal/common/metrics"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is an unbounded in-process TTL map. Expiry is evaluated lazily:
// nothing is evicted until a Get observes the expired key.
type Memory[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
	now   Clock
}

type MemoryOption[V any] func(*Memory[V])

// WithClock overrides time.Now.
func WithClock[V any](clock Clock) MemoryOption[V] {
	return func(m *Memory[V]) {
		m.now = clock
	}
}

func NewMemory[V any](opts ...MemoryOption[V]) *Memory[V] {
	m := &Memory[V]{
		items: make(map[string]entry[V]),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl <= 0 {
		delete(m.items, key)
		return
	}
	m.items[key] = entry[V]{value: value, expiresAt: m.now().Add(ttl)}
}

// Get deletes the key as a side effect when it has expired.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	e, ok := m.items[key]
	if !ok {
		metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
		return zero, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.items, key)
		metrics.CacheLookups.WithLabelValues("memory", "expired").Inc()
		return zero, false
	}
	metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
	return e.value, true
}

func (m *Memory[V]) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

func (m *Memory[V]) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]entry[V])
}

// Len counts stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
