package resolver

import (
	"sync"
	"time"

	"pricing-service/internal/pricing"
)

// DefaultTTL is how long a fetched pricing document counts as fresh
const DefaultTTL = 5 * time.Minute

// Cache holds the last known-good pricing document and when it was fetched
type Cache struct {
	ttl       time.Duration
	now       func() time.Time
	cfg       *pricing.PricingConfig
	fetchedAt time.Time
	mu        sync.RWMutex
}

// NewCache creates an empty cache. A non-positive ttl uses DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl: ttl,
		now: time.Now,
	}
}

// Entry is a snapshot of the cache
type Entry struct {
	Config    *pricing.PricingConfig
	FetchedAt time.Time
	Age       time.Duration
	Fresh     bool
}

// Get returns the cached document, stale or not. ok is false when the cache is empty.
func (c *Cache) Get() (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cfg == nil {
		return Entry{}, false
	}
	age := c.now().Sub(c.fetchedAt)
	return Entry{
		Config:    c.cfg,
		FetchedAt: c.fetchedAt,
		Age:       age,
		Fresh:     age < c.ttl,
	}, true
}

// Set replaces the cached document and resets its timestamp
func (c *Cache) Set(cfg *pricing.PricingConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg = cfg
	c.fetchedAt = c.now()
}

// Invalidate empties the cache
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg = nil
	c.fetchedAt = time.Time{}
}

// TTL returns the freshness window
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
