// Package memcache is the process-wide response cache protecting the quote
// fetch layer and the public endpoints built on it. Pure in-memory state:
// its job is short-lived protection, not a source of truth.
package memcache

import (
	"sync"
	"time"
)

const (
	DefaultMaxEntries       = 2048
	DefaultCleanupThreshold = 1536
)

// Cache key convention is provider+symbol+purpose, e.g. "quote:chain:INFY".
const (
	PurposeQuote = "quote"
	PurposeNAV   = "nav"
)

func Key(purpose, provider, symbol string) string {
	return purpose + ":" + provider + ":" + symbol
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache stores keyed values with an absolute expiry. Entries are evicted
// lazily on read once expired; writes past the cleanup threshold sweep
// expired entries first, and writes past the hard cap evict oldest-inserted.
type Cache struct {
	maxEntries       int
	cleanupThreshold int
	now              func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	order   []string // insertion order for FIFO eviction
}

type Option func(*Cache)

// WithNow injects the time source; tests use it to expire entries.
func WithNow(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

func WithCapacity(max, cleanup int) Option {
	return func(c *Cache) {
		if max > 0 {
			c.maxEntries = max
		}
		if cleanup > 0 {
			c.cleanupThreshold = cleanup
		}
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		maxEntries:       DefaultMaxEntries,
		cleanupThreshold: DefaultCleanupThreshold,
		now:              time.Now,
		entries:          make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cleanupThreshold > c.maxEntries {
		c.cleanupThreshold = c.maxEntries
	}
	return c
}

// Get returns the cached value, or a miss for absent and expired keys.
// An expired entry is deleted on access.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl stores an entry that
// is already expired, so the next read is a miss. Entries are replaced, never
// updated in place.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}

	if len(c.entries) > c.cleanupThreshold {
		c.sweepExpired(now)
	}
	for len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) sweepExpired(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.compactOrder()
}

func (c *Cache) evictOldest() {
	for len(c.order) > 0 {
		k := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			return
		}
	}
}

// compactOrder drops order slots whose entries are gone, keeping the slice
// bounded by the live entry count.
func (c *Cache) compactOrder() {
	live := c.order[:0]
	for _, k := range c.order {
		if _, ok := c.entries[k]; ok {
			live = append(live, k)
		}
	}
	c.order = live
}
