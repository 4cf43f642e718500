package inmemory

import (
	"sync"
	"time"

	trackingdomain "time-report-go/internal/domain/tracking"
)

// CacheObserver receives hit and miss counts, e.g. prometheus counters.
type CacheObserver interface {
	IncrCacheHit(cache string)
	IncrCacheMiss(cache string)
}

// ViewCache keeps read views per tenant, grouped by tag so a mutation can
// drop every view of one entity type at once. Each invalidation bumps the
// tag's generation so a read that raced the mutation cannot store its result.
type ViewCache struct {
	mu          sync.RWMutex
	tenants     map[string]map[trackingdomain.Tag]map[string]viewItem
	generations map[string]map[trackingdomain.Tag]uint64
	observer    CacheObserver
	now         func() time.Time
}

type viewItem struct {
	value     any
	expiresAt time.Time
}

func NewViewCache(observer CacheObserver) *ViewCache {
	return &ViewCache{
		tenants:     make(map[string]map[trackingdomain.Tag]map[string]viewItem),
		generations: make(map[string]map[trackingdomain.Tag]uint64),
		observer:    observer,
		now:         time.Now,
	}
}

func (c *ViewCache) Get(tenantID string, tag trackingdomain.Tag, key string) (any, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.tenants[tenantID][tag][key]
	c.mu.RUnlock()
	if !ok {
		c.miss(tag)
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.tenants[tenantID][tag][key]
		if ok && !item.expiresAt.After(now) {
			delete(c.tenants[tenantID][tag], key)
		}
		c.mu.Unlock()
		c.miss(tag)
		return nil, false
	}

	c.hit(tag)
	return item.value, true
}

func (c *ViewCache) Generation(tenantID string, tag trackingdomain.Tag) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[tenantID][tag]
}

func (c *ViewCache) Set(tenantID string, tag trackingdomain.Tag, key string, value any, generation uint64, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[tenantID][tag] != generation {
		return
	}

	tags, ok := c.tenants[tenantID]
	if !ok {
		tags = make(map[trackingdomain.Tag]map[string]viewItem)
		c.tenants[tenantID] = tags
	}
	items, ok := tags[tag]
	if !ok {
		items = make(map[string]viewItem)
		tags[tag] = items
	}
	items[key] = viewItem{value: value, expiresAt: c.now().Add(ttl)}
}

func (c *ViewCache) Invalidate(tenantID string, tags ...trackingdomain.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()

	generations, ok := c.generations[tenantID]
	if !ok {
		generations = make(map[trackingdomain.Tag]uint64)
		c.generations[tenantID] = generations
	}
	for _, tag := range tags {
		generations[tag]++
	}

	cached, ok := c.tenants[tenantID]
	if !ok {
		return
	}
	for _, tag := range tags {
		delete(cached, tag)
	}
	if len(cached) == 0 {
		delete(c.tenants, tenantID)
	}
}

func (c *ViewCache) hit(tag trackingdomain.Tag) {
	if c.observer != nil {
		c.observer.IncrCacheHit("views_" + string(tag))
	}
}

func (c *ViewCache) miss(tag trackingdomain.Tag) {
	if c.observer != nil {
		c.observer.IncrCacheMiss("views_" + string(tag))
	}
}
