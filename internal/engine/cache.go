package engine

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ParseCache is a bounded cache mapping formula source text to its parsed
// AST. The same compiled filter formula is typically evaluated once per
// visible row, so caching the parse removes the dominant repeated cost
// while keeping evaluation itself stateless.
//
// Eviction strategy: when the cache reaches its capacity limit the entire
// map is replaced. This is simpler than a true LRU and sufficient for the
// target use-case (a small number of distinct formulas evaluated many
// times).
//
// Cached trees are immutable and shared between callers; the evaluator
// never mutates a node.
//
// Thread safety: all methods are safe for concurrent use.
type ParseCache struct {
	mu    sync.RWMutex
	items map[uint64]cacheEntry
	max   int
}

type cacheEntry struct {
	// source guards against the (unlikely) case of two formulas hashing to
	// the same key.
	source string
	node   Node
}

// DefaultParseCacheSize is the capacity used when no size is configured.
const DefaultParseCacheSize = 256

// NewParseCache creates a parse cache holding at most max entries. A max
// of zero or less disables caching entirely.
func NewParseCache(max int) *ParseCache {
	return &ParseCache{
		items: make(map[uint64]cacheEntry, maxInitial(max)),
		max:   max,
	}
}

func maxInitial(max int) int {
	if max < 0 {
		return 0
	}
	return max
}

// Parse returns the AST for the given source, parsing and caching it on a
// miss. Parse failures are not cached; a broken formula is expected to be
// corrected, not retried in a hot loop.
func (c *ParseCache) Parse(source string) (Node, error) {
	if c == nil || c.max <= 0 {
		return ParseSource(source)
	}

	key := xxhash.Sum64String(source)

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && entry.source == source {
		return entry.node, nil
	}

	node, err := ParseSource(source)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.items) >= c.max {
		// Evict everything and start fresh rather than tracking individual
		// entry ages.
		c.items = make(map[uint64]cacheEntry, c.max)
	}
	c.items[key] = cacheEntry{source: source, node: node}
	c.mu.Unlock()

	return node, nil
}

// Len reports the number of cached entries.
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
