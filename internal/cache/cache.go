// Package cache provides the read-side cache used for public settings and
// published content listings. Two implementations exist: an in-process TTL
// map and a redis-backed store selected when REDIS_ADDR is configured.
package cache

import (
	"context"
	"sync"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	val []byte
	exp time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Memory) Set(_ context.Context, key string, val []byte) {
	c.mu.Lock()
	c.m[key] = entry{val: val, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Memory) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Memory) Clear(_ context.Context) {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}
