// Package memory provides an unbounded in-memory embedding cache.
// It is the default: embedding sets are small relative to vector index
// memory, so eviction only becomes worthwhile at large corpus sizes,
// where the Ristretto adapter takes over.
package memory

import (
	"sync"

	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// Cache maps content hashes to vectors with no eviction.
// Cached slices are shared, not copied; callers must not mutate them.
type Cache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
	onEvict func(contentHash string)
}

// Option configures a Cache.
type Option func(*Cache)

// WithEvictionHook registers a callback for evicted entries. Under the
// no-evict policy it never fires; it exists so callers can swap in a
// bounded cache without changing their wiring.
func WithEvictionHook(fn func(contentHash string)) Option {
	return func(c *Cache) {
		c.onEvict = fn
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		vectors: make(map[string][]float32),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached vector for a content hash, if present.
func (c *Cache) Get(contentHash string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.vectors[contentHash]
	return vector, ok
}

// Set stores a vector under a content hash. After Close it is a
// no-op: an embed that was already in flight when the engine shut
// down may still try to populate the cache.
func (c *Cache) Set(contentHash string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vectors == nil {
		return
	}
	c.vectors[contentHash] = vector
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

// Close releases the map.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors = nil
}
