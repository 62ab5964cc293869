package probe

import (
	"sync"
	"time"

	"github.com/dtnitsch/dead-link-audit/models"
)

// Cache TTLs. Retryable outcomes expire after a quarter of the definitive
// TTL so transient failures get re-probed sooner than permanent ones.
const (
	DefinitiveTTL = 24 * time.Hour
	RetryableTTL  = DefinitiveTTL / 4
)

type cacheEntry struct {
	outcome  models.ProbeOutcome
	storedAt time.Time
}

// Cache memoizes probe outcomes per URL for the lifetime of the process.
// It is an optimization, not a source of truth; a rare duplicate probe on
// a concurrent miss is tolerable (idempotent overwrite). Safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache returns an empty probe-outcome cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached outcome for a URL if present and not expired
// under the class-dependent TTL.
func (c *Cache) Get(url string) (models.ProbeOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok {
		return models.ProbeOutcome{}, false
	}

	ttl := DefinitiveTTL
	if entry.outcome.Retryable {
		ttl = RetryableTTL
	}
	if c.now().Sub(entry.storedAt) > ttl {
		delete(c.entries, url)
		return models.ProbeOutcome{}, false
	}

	return entry.outcome, true
}

// Set stores an outcome with the current timestamp.
func (c *Cache) Set(url string, outcome models.ProbeOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = cacheEntry{outcome: outcome, storedAt: c.now()}
}

// Len returns the number of cached entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
