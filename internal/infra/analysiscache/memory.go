package analysiscache

import (
	"sync"

	"github.com/matevzk/povzetek/internal/domain/grounding"
)

type cacheKey struct {
	source  string
	summary string
}

// MemoryCache is the in-process grounding.Cache implementation. The mutex
// keeps Get/Put/Clear atomic so the cache stays correct on multithreaded
// hosts, not just under a single event loop.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]grounding.WordAnalysis
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[cacheKey][]grounding.WordAnalysis)}
}

// Get implements grounding.Cache.
func (c *MemoryCache) Get(sourceText, summaryText string) ([]grounding.WordAnalysis, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	analysis, ok := c.entries[cacheKey{source: sourceText, summary: summaryText}]
	return analysis, ok
}

// Put stores the verdict for the exact text pair, replacing any prior entry.
func (c *MemoryCache) Put(sourceText, summaryText string, analysis []grounding.WordAnalysis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{source: sourceText, summary: summaryText}] = analysis
}

// Clear drops every entry at once. There is no finer-grained eviction;
// unbounded growth within one record's session is accepted.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey][]grounding.WordAnalysis)
}

var _ grounding.Cache = (*MemoryCache)(nil)
