// Package ristretto provides a bounded embedding cache backed by
// dgraph-io/ristretto. Used when cache.max_entries is set: admission
// and eviction keep the hot working set under the configured bound at
// the cost of occasional re-embeds for evicted content.
package ristretto

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/ristretto"

	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// Cache is a bounded, eviction-capable embedding cache. Every entry
// costs 1, so max_entries bounds the entry count rather than bytes.
type Cache struct {
	cache   *ristretto.Cache
	onEvict func(contentHash string)
	closed  atomic.Bool
}

// entry is the stored value. Ristretto only hands back the hashed key
// on eviction, so the content hash rides along with the vector.
type entry struct {
	contentHash string
	vector      []float32
}

// Option configures a Cache.
type Option func(*Cache)

// WithEvictionHook registers a callback invoked with the content hash
// of every evicted entry. Not called after Close.
func WithEvictionHook(fn func(contentHash string)) Option {
	return func(c *Cache) {
		c.onEvict = fn
	}
}

// New creates a cache bounded to maxEntries vectors.
func New(maxEntries int64, opts ...Option) (*Cache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache bound must be positive, got %d", maxEntries)
	}

	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		// 10x counters per entry, per the ristretto sizing guidance.
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		Metrics:     true,
		OnEvict:     c.notifyEvict,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ristretto cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// notifyEvict forwards an eviction to the registered hook.
func (c *Cache) notifyEvict(item *ristretto.Item) {
	if c.onEvict == nil || c.closed.Load() {
		return
	}
	if e, ok := item.Value.(entry); ok {
		c.onEvict(e.contentHash)
	}
}

// Get returns the cached vector for a content hash, if present.
func (c *Cache) Get(contentHash string) ([]float32, bool) {
	value, ok := c.cache.Get(contentHash)
	if !ok {
		return nil, false
	}
	e, ok := value.(entry)
	if !ok {
		return nil, false
	}
	return e.vector, true
}

// Set stores a vector under a content hash. Admission is asynchronous
// and best effort: ristretto may drop the set under contention, which
// only costs a later provider round trip.
func (c *Cache) Set(contentHash string, vector []float32) {
	c.cache.Set(contentHash, entry{contentHash: contentHash, vector: vector}, 1)
}

// Len approximates the number of resident vectors from cache metrics.
func (c *Cache) Len() int {
	m := c.cache.Metrics
	added, evicted := m.KeysAdded(), m.KeysEvicted()
	if added <= evicted {
		return 0
	}
	return int(added - evicted)
}

// Close stops the cache's background goroutines and silences the
// eviction hook.
func (c *Cache) Close() {
	c.closed.Store(true)
	c.cache.Close()
}
