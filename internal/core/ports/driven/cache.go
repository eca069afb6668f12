package driven

// EmbeddingCache maps content hashes to previously computed vectors so
// unchanged content never reaches the provider twice.
//
// The interface is eviction-capable: Get may miss for a key that was Set
// earlier, and implementations may notify an eviction hook. The default
// adapter never evicts; a bounded adapter (Ristretto) may.
type EmbeddingCache interface {
	// Get returns the cached vector for a content hash, if present.
	Get(contentHash string) ([]float32, bool)

	// Set stores a vector under a content hash. May evict other entries
	// under a bounded policy.
	Set(contentHash string, vector []float32)

	// Len returns the number of currently cached vectors.
	Len() int

	// Close releases resources and fires no further eviction hooks.
	Close()
}
