package atvr

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProducerCache holds the upstream producer-name list between calls.
type ProducerCache interface {
	Get(ctx context.Context) ([]string, bool, error)
	Set(ctx context.Context, names []string) error
	Invalidate(ctx context.Context) error
}

// MemoryProducerCache keeps the list in process for ttl. A zero ttl never
// expires.
type MemoryProducerCache struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	names    []string
	storedAt time.Time
}

func NewMemoryProducerCache(ttl time.Duration) *MemoryProducerCache {
	return &MemoryProducerCache{ttl: ttl, now: time.Now}
}

func (m *MemoryProducerCache) Get(ctx context.Context) ([]string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.names == nil {
		return nil, false, nil
	}
	if m.ttl > 0 && m.now().Sub(m.storedAt) >= m.ttl {
		return nil, false, nil
	}
	return m.names, true, nil
}

func (m *MemoryProducerCache) Set(ctx context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if names == nil {
		names = []string{}
	}
	m.names = names
	m.storedAt = m.now()
	return nil
}

func (m *MemoryProducerCache) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = nil
	return nil
}

const producerCacheKey = "catalog-sync:atvr:producers"

// RedisProducerCache shares the list between processes.
type RedisProducerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProducerCache(client *redis.Client, ttl time.Duration) *RedisProducerCache {
	return &RedisProducerCache{client: client, ttl: ttl}
}

func (r *RedisProducerCache) Get(ctx context.Context) ([]string, bool, error) {
	raw, err := r.client.Get(ctx, producerCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, false, err
	}
	return names, true, nil
}

func (r *RedisProducerCache) Set(ctx context.Context, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, producerCacheKey, raw, r.ttl).Err()
}

func (r *RedisProducerCache) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, producerCacheKey).Err()
}
