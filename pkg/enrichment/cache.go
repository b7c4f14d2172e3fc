package enrichment

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/saturn/pkg/temporal"
)

// ContextCache is a TTL cache of enriched temporal contexts keyed by
// (sender, recipient).
//
// Eviction is lazy: expiry is checked only when an entry is read. This is a
// deliberate tradeoff — memory is bounded by the access pattern rather than
// wall-clock time, so a cache under pure write pressure without reads can
// grow unboundedly. Deployments with write-heavy load should cap growth
// with a periodic Sweep (see Sweeper) or an entry limit.
type ContextCache struct {
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	entries   map[cacheKey]cacheEntry
	hits      int64
	misses    int64
	evictions int64
}

type cacheKey struct {
	sender    string
	recipient string
}

type cacheEntry struct {
	context  *temporal.TemporalContext
	cachedAt time.Time
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	// Entries is the current number of cached contexts.
	Entries int `json:"entries"`

	// Hits is the number of reads served from cache.
	Hits int64 `json:"hits"`

	// Misses counts reads of absent or expired entries.
	Misses int64 `json:"misses"`

	// Evictions counts entries removed on expiry.
	Evictions int64 `json:"evictions"`

	// HitRate is hits / (hits + misses), formatted as a percentage.
	HitRate string `json:"hit_rate"`

	// TTL is the configured entry lifetime.
	TTL time.Duration `json:"ttl"`
}

// DefaultCacheTTL is the default entry lifetime.
const DefaultCacheTTL = 120 * time.Second

// NewContextCache creates a cache with the given TTL. A zero TTL uses
// DefaultCacheTTL.
func NewContextCache(ttl time.Duration, logger *slog.Logger) *ContextCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default().With("component", "enrichment.cache")
	}
	return &ContextCache{
		ttl:     ttl,
		logger:  logger,
		entries: make(map[cacheKey]cacheEntry),
	}
}

// Get returns a copy of the cached context for (sender, recipient), or nil
// on a miss. Reading an expired entry removes it and counts as both a miss
// and an eviction.
func (c *ContextCache) Get(sender, recipient string) *temporal.TemporalContext {
	key := cacheKey{sender: sender, recipient: recipient}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil
	}

	age := now.Sub(entry.cachedAt)
	if age > c.ttl {
		delete(c.entries, key)
		c.evictions++
		c.misses++
		c.logger.Debug("cache entry expired",
			"sender", sender,
			"recipient", recipient,
			"age", age,
			"ttl", c.ttl,
		)
		return nil
	}

	c.hits++
	return entry.context.Clone()
}

// Set stores a copy of the context under (sender, recipient),
// unconditionally overwriting any existing entry.
func (c *ContextCache) Set(sender, recipient string, context *temporal.TemporalContext) {
	key := cacheKey{sender: sender, recipient: recipient}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		context:  context.Clone(),
		cachedAt: time.Now(),
	}
}

// Clear removes all entries. Counters are preserved.
func (c *ContextCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[cacheKey]cacheEntry)
	c.logger.Info("cache cleared",
		"hits", c.hits,
		"misses", c.misses,
		"evictions", c.evictions,
	)
}

// Sweep removes all expired entries, counting each as an eviction (but not
// a miss, since nothing was asked for). Returns the number removed.
func (c *ContextCache) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.cachedAt) > c.ttl {
			delete(c.entries, key)
			c.evictions++
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of cache counters.
func (c *ContextCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   fmt.Sprintf("%.1f%%", hitRate),
		TTL:       c.ttl,
	}
}
