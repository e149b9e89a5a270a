package mapping

import (
	"fmt"

	"github.com/desertthunder/listbridge/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the search cache when no size is configured.
const DefaultCacheSize = 200

// SearchCache memoizes raw provider search results keyed by "provider:query".
//
// Reads and writes both promote an entry to most recently used; inserting past
// capacity evicts the least recently used entry. Safe for concurrent use.
type SearchCache struct {
	entries *lru.Cache[string, []models.Track]
}

// NewSearchCache creates a cache holding at most size queries.
func NewSearchCache(size int) (*SearchCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []models.Track](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}
	return &SearchCache{entries: entries}, nil
}

// CacheKey builds the cache key for a provider query.
func CacheKey(provider, query string) string {
	return provider + ":" + query
}

// Get returns cached results for key and marks it most recently used.
func (c *SearchCache) Get(key string) ([]models.Track, bool) {
	return c.entries.Get(key)
}

// Set stores results under key, evicting the least recently used entry when full.
func (c *SearchCache) Set(key string, results []models.Track) {
	c.entries.Add(key, results)
}

// Contains reports whether key is cached without touching its recency.
func (c *SearchCache) Contains(key string) bool {
	return c.entries.Contains(key)
}

// Len returns the number of cached queries.
func (c *SearchCache) Len() int {
	return c.entries.Len()
}

// Clear drops every entry.
func (c *SearchCache) Clear() {
	c.entries.Purge()
}
