package scan

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/kmichalik/embedtrace"
)

// Ensure TTLCache implements embedtrace.Cache.
var _ embedtrace.Cache = (*TTLCache)(nil)

// TTLCache is a bounded in-memory cache with per-entry expiry. Keys are
// stored as xxhash digests rather than full strings. It memoizes network
// lookups (DID resolution, short-link expansion) for the duration of a run;
// eviction is safe because a miss simply repeats the lookup.
type TTLCache struct {
	mu         sync.Mutex
	entries    map[uint64]cacheEntry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

type cacheEntry struct {
	value   string
	expires time.Time
}

// NewTTLCache creates a TTLCache holding at most maxEntries values, each
// valid for ttl after it is set.
func NewTTLCache(maxEntries int, ttl time.Duration) *TTLCache {
	return &TTLCache{
		entries:    make(map[uint64]cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache) Get(key string) (string, bool) {
	h := xxhash.Sum64String(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[h]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, h)
		return "", false
	}
	return entry.value, true
}

// Set stores a value for key. When the cache is full, expired entries are
// swept first; if none have expired, arbitrary entries are evicted to make
// room.
func (c *TTLCache) Set(key string, value string) {
	h := xxhash.Sum64String(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[h]; !ok && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}

	c.entries[h] = cacheEntry{
		value:   value,
		expires: c.now().Add(c.ttl),
	}
}

// evictLocked removes expired entries and, if the cache is still full,
// arbitrary entries until there is room for one more. Callers must hold mu.
func (c *TTLCache) evictLocked() {
	now := c.now()
	for h, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, h)
		}
	}
	for h := range c.entries {
		if len(c.entries) < c.maxEntries {
			break
		}
		delete(c.entries, h)
	}
}
