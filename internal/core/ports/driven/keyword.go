package driven

import (
	"context"

	"github.com/weave-nn/weave/internal/core/domain"
)

// KeywordSearcher provides full-text search over chunks.
// Backed by Bleve. The score scale is engine-specific and unspecified;
// hybrid search normalises it before fusion.
type KeywordSearcher interface {
	// Index adds or updates a chunk in the search index.
	Index(ctx context.Context, chunk domain.Chunk) error

	// Delete removes a chunk from the search index. Unknown ids are a
	// no-op.
	Delete(ctx context.Context, chunkID string) error

	// DeleteSource removes every chunk belonging to a source.
	DeleteSource(ctx context.Context, sourceID string) error

	// Search performs a keyword search and returns matching chunk ids
	// with raw engine scores, best first.
	Search(ctx context.Context, query string, limit int) ([]KeywordHit, error)

	// Close releases resources.
	Close() error
}

// KeywordHit represents a lexical search result.
type KeywordHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the raw engine score (scale unspecified).
	Score float64
}
