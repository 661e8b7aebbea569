package suggest

import (
	"sync"
	"time"
)

// DefaultTTL is how long a computed suggestion may be served again.
const DefaultTTL = 30 * time.Second

// Entry is a cached Result with the time it was stored.
type Entry struct {
	Result   Result
	StoredAt time.Time
}

// Cache memoizes suggestions by request key for the lifetime of the
// hosting process. It has no size bound; Engine keeps it small by calling
// EvictExcept while a user is editing charges.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]Entry
}

// NewCache creates an empty cache. A non-positive ttl selects DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, entries: make(map[string]Entry)}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Read returns the entry for key and whether it is younger than the TTL
// at now. An expired entry is returned with false.
func (c *Cache) Read(key string, now time.Time) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(e.StoredAt) >= c.ttl {
		return &e, false
	}
	return &e, true
}

// Write stores r under key, replacing any previous entry.
func (c *Cache) Write(key string, r Result, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{Result: r, StoredAt: now}
}

// EvictExcept drops every entry whose key differs from keep and returns
// how many were removed.
func (c *Cache) EvictExcept(keep string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if k != keep {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the stored keys in no particular order.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
