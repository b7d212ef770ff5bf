package ebay

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
)

// Lookup is anything that can resolve sold-price stats for a query.
type Lookup interface {
	SoldPrices(ctx context.Context, query string) (models.MarketStats, error)
}

type cacheEntry struct {
	stats   models.MarketStats
	expires time.Time
}

// CachedLookup memoizes sold-price lookups per normalized query key and
// collapses concurrent lookups for the same key into a single API call, so a
// batch of listings with identical titles costs one request. Errors are not
// cached: a failed query is retried on the next request.
type CachedLookup struct {
	inner Lookup
	ttl   time.Duration
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCachedLookup wraps a lookup with a TTL cache. A ttl <= 0 defaults to
// five minutes.
func NewCachedLookup(inner Lookup, ttl time.Duration) *CachedLookup {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedLookup{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// SoldPrices resolves the query through the cache. At most one underlying
// lookup is in flight per distinct query key at any time.
func (c *CachedLookup) SoldPrices(ctx context.Context, query string) (models.MarketStats, error) {
	c.mu.RLock()
	entry, ok := c.entries[query]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.stats, nil
	}

	result, err, _ := c.group.Do(query, func() (any, error) {
		stats, err := c.inner.SoldPrices(ctx, query)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[query] = cacheEntry{stats: stats, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()

		return stats, nil
	})
	if err != nil {
		return models.MarketStats{}, err
	}
	return result.(models.MarketStats), nil
}

// Len returns the number of cached queries. Used by tests.
func (c *CachedLookup) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
