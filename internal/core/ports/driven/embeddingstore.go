package driven

import (
	"context"

	"github.com/weave-nn/weave/internal/core/domain"
)

// EmbeddingStore persists embeddings durably. The VectorIndex owns this
// table: every index mutation writes through it, and startup rebuilds
// read it back in full.
type EmbeddingStore interface {
	// SaveEmbedding stores an embedding. Upserts on (ChunkID,
	// ModelVersion): re-saving the same pair overwrites the row in place,
	// while a new model version inserts a separate row.
	SaveEmbedding(ctx context.Context, emb *domain.Embedding) error

	// DeleteEmbedding removes an embedding by id. Unknown ids are a no-op.
	DeleteEmbedding(ctx context.Context, id string) error

	// DeleteBySource removes all embeddings whose chunks belong to a
	// source. Unknown sources are a no-op.
	DeleteBySource(ctx context.Context, sourceID string) error

	// ScanEntries streams every stored embedding as an index entry
	// (vector plus chunk/source/strategy metadata). Used only for the
	// full index rebuild at startup.
	ScanEntries(ctx context.Context) ([]domain.VectorEntry, error)

	// CountEmbeddings returns the total number of stored embeddings.
	CountEmbeddings(ctx context.Context) (int, error)
}
