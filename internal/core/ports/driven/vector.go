package driven

import (
	"context"

	"github.com/weave-nn/weave/internal/core/domain"
)

// VectorIndex provides cosine similarity search over stored embeddings.
// Implementations own both the durable embedding rows and the in-memory
// index mirroring them: Store and Delete update both inside one logical
// operation, and LoadIndex is the only full-rebuild path.
type VectorIndex interface {
	// Store inserts or overwrites an entry. Idempotent; atomic with
	// respect to concurrent Search calls.
	Store(ctx context.Context, entry domain.VectorEntry) error

	// Delete removes an entry by embedding id. Unknown ids are a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteSource removes every entry belonging to a source.
	DeleteSource(ctx context.Context, sourceID string) error

	// Search returns the k most similar entries by descending cosine
	// similarity, ties broken by insertion order. k larger than the
	// index returns everything. A zero filter matches all entries.
	Search(ctx context.Context, query []float32, k int, filter VectorFilter) ([]VectorHit, error)

	// LoadIndex rebuilds the in-memory index from durable storage.
	// Startup-only: it admits no concurrent searches while running and
	// has no incremental mode.
	LoadIndex(ctx context.Context) error

	// Size returns the number of entries currently in the in-memory
	// index.
	Size() int

	// Close releases resources.
	Close() error
}

// VectorFilter restricts a similarity search to matching entries.
// Zero value matches everything.
type VectorFilter struct {
	// SourceIDs limits hits to the given sources when non-empty.
	SourceIDs []string

	// Strategies limits hits to chunks from the given chunkers when
	// non-empty.
	Strategies []domain.Strategy
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// EmbeddingID is the matched index entry.
	EmbeddingID string

	// ChunkID is the chunk the entry represents, the fusion join key.
	ChunkID string

	// SourceID and Strategy are carried for filtering and diversity
	// re-ranking without a storage hit.
	SourceID string
	Strategy domain.Strategy

	// Similarity is the cosine similarity in [-1,1]; 0 for zero vectors.
	Similarity float64
}
