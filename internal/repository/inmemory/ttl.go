package inmemory

import (
	"sync"
	"time"
)

// TTLCache is a keyed cache with one expiry for every entry. Expired
// entries are dropped lazily on read.
type TTLCache[V any] struct {
	mu    sync.RWMutex
	items map[string]ttlItem[V]
	ttl   time.Duration
	now   func() time.Time
}

type ttlItem[V any] struct {
	value     V
	expiresAt time.Time
}

func NewTTLCache[V any](ttl time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		items: make(map[string]ttlItem[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[key]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return item.value, true
}

func (c *TTLCache[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	c.items[key] = ttlItem[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}
