package driven

import (
	"context"

	"github.com/weave-nn/weave/internal/core/domain"
)

// ChunkStore persists chunks durably.
// Backed by SQLite; an in-memory implementation exists for tests.
type ChunkStore interface {
	// SaveChunks stores a batch of chunks in one transaction.
	// Saving a chunk id that already exists is an upsert.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a single chunk by id.
	// Returns domain.ErrNotFound if the id is unknown.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves multiple chunks by id. Unknown ids are skipped;
	// the result preserves the order of the requested ids.
	GetChunks(ctx context.Context, ids []string) ([]domain.Chunk, error)

	// ListBySource returns all chunks for a source ordered by index.
	ListBySource(ctx context.Context, sourceID string) ([]domain.Chunk, error)

	// NextIndex returns the next free ordinal for a source, so repeated
	// indexing calls append rather than collide on (sourceID, index).
	NextIndex(ctx context.Context, sourceID string) (int, error)

	// DeleteBySource removes all chunks for a source. Embeddings cascade.
	// Deleting an unknown source is a no-op.
	DeleteBySource(ctx context.Context, sourceID string) error

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// CountSources returns the number of distinct source ids.
	CountSources(ctx context.Context) (int, error)
}
