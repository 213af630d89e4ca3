package providers

import (
	"context"
	"sync"

	"CloudSentry/internal/logger"
)

// Cache memoizes fetch results for the lifetime of the process, keyed by
// provider identity plus fetch parameters, so changing a filter does not
// re-fetch identical raw logs. Entries are never invalidated by time or
// by log content change; only a process restart clears the cache. That
// staleness is an accepted trade-off for this tool, not a defect.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*FetchResult
}

// NewCache creates an empty fetch cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*FetchResult),
	}
}

// Fetch returns the cached result for the provider, fetching and caching
// it first if necessary. Errors are not cached; a failed fetch is retried
// on the next call.
func (c *Cache) Fetch(ctx context.Context, p Provider) (*FetchResult, error) {
	key := p.CacheKey()

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		logger.Debug("Cache hit for %s", key)
		return cached, nil
	}

	result, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = result
	c.mu.Unlock()

	logger.Debug("Cached fetch result for %s (%d records)", key, len(result.Records))
	return result, nil
}

// Len returns the number of cached fetch results
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
