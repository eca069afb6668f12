package driving

import (
	"context"

	"github.com/weave-nn/weave/internal/core/domain"
)

// MemoryService turns raw content into indexed, retrievable chunks and
// manages their lifecycle.
type MemoryService interface {
	// ChunkAndIndex runs the full pipeline for one piece of content:
	// strategy selection, chunking, metadata enrichment, embedding, and
	// storage in the durable store, keyword index and vector index.
	// Returns the enriched chunks that were indexed.
	ChunkAndIndex(ctx context.Context, content, sourceID, classification string) ([]domain.Chunk, error)

	// DeleteSource removes every chunk, embedding, keyword entry and
	// vector entry belonging to a source. Idempotent.
	DeleteSource(ctx context.Context, sourceID string) error

	// Stats reports persisted and indexed counts.
	Stats(ctx context.Context) (*domain.MemoryStats, error)
}
