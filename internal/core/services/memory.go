package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/weave-nn/weave/internal/chunking"
	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
	"github.com/weave-nn/weave/internal/core/ports/driving"
	"github.com/weave-nn/weave/internal/logger"
)

// Ensure MemoryService implements the interface.
var _ driving.MemoryService = (*MemoryService)(nil)

// MemoryService runs the full indexing pipeline: strategy selection,
// chunking, enrichment, embedding, then storage in the durable chunk
// table, the keyword index and the vector index.
//
// Chunks are append-only: indexing more content for a known source
// continues its ordinal sequence, and the only way content leaves the
// engine is DeleteSource, which removes a source's whole generation
// from every layer.
type MemoryService struct {
	selector       *chunking.Selector
	enricher       *chunking.Enricher
	chunkStore     driven.ChunkStore
	embeddingStore driven.EmbeddingStore
	keyword        driven.KeywordSearcher
	vectors        driven.VectorIndex
	embedder       driven.EmbeddingProvider
}

// NewMemoryService creates the indexing pipeline service. The keyword
// searcher is optional (nil skips lexical indexing and hybrid search
// degrades to semantic-only); everything else is required.
func NewMemoryService(
	selector *chunking.Selector,
	enricher *chunking.Enricher,
	chunkStore driven.ChunkStore,
	embeddingStore driven.EmbeddingStore,
	keyword driven.KeywordSearcher,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingProvider,
) (*MemoryService, error) {
	if selector == nil || enricher == nil {
		return nil, fmt.Errorf("%w: selector and enricher are required", domain.ErrInvalidInput)
	}
	if chunkStore == nil || embeddingStore == nil {
		return nil, fmt.Errorf("%w: chunk and embedding stores are required", domain.ErrInvalidInput)
	}
	if vectors == nil || embedder == nil {
		return nil, fmt.Errorf("%w: vector index and embedding provider are required", domain.ErrInvalidInput)
	}
	return &MemoryService{
		selector:       selector,
		enricher:       enricher,
		chunkStore:     chunkStore,
		embeddingStore: embeddingStore,
		keyword:        keyword,
		vectors:        vectors,
		embedder:       embedder,
	}, nil
}

// ChunkAndIndex turns one piece of content into indexed chunks.
// A chunking failure surfaces as *domain.ChunkingError and aborts the
// call before anything is stored; an embedding failure likewise. No
// partial generation ever lands in storage.
func (m *MemoryService) ChunkAndIndex(
	ctx context.Context, content, sourceID, classification string,
) ([]domain.Chunk, error) {
	logger.Section("Chunk and Index")

	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("%w: source id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		logger.Debug("empty content for source %s, nothing to index", sourceID)
		return nil, nil
	}

	chunks, err := m.selector.Chunk(content, classification)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	logger.Debug("chunked %q as %s: %d chunks", sourceID, chunks[0].Strategy, len(chunks))

	// Continue the source's ordinal sequence so repeated indexing calls
	// append instead of colliding on (sourceID, index).
	base, err := m.chunkStore.NextIndex(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("next index for %s: %w", sourceID, err)
	}
	for i := range chunks {
		chunks[i].SourceID = sourceID
		chunks[i].Index += base
	}

	enriched := m.enricher.Enrich(chunks)

	texts := make([]string, len(enriched))
	for i := range enriched {
		texts[i] = enriched[i].Content
	}
	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(texts), err)
	}

	if err := m.chunkStore.SaveChunks(ctx, enriched); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	for i := range enriched {
		if m.keyword != nil {
			if err := m.keyword.Index(ctx, enriched[i]); err != nil {
				return nil, fmt.Errorf("keyword index chunk %s: %w", enriched[i].ID, err)
			}
		}
		entry := domain.VectorEntry{
			ID:       uuid.NewString(),
			ChunkID:  enriched[i].ID,
			SourceID: enriched[i].SourceID,
			Strategy: enriched[i].Strategy,
			Vector:   vectors[i],
		}
		if err := m.vectors.Store(ctx, entry); err != nil {
			return nil, fmt.Errorf("vector index chunk %s: %w", enriched[i].ID, err)
		}
	}

	logger.Info("indexed %d chunks for source %s", len(enriched), sourceID)
	return enriched, nil
}

// DeleteSource removes every chunk, embedding, keyword entry and vector
// entry for a source. Deleting an unknown source is a no-op.
func (m *MemoryService) DeleteSource(ctx context.Context, sourceID string) error {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return fmt.Errorf("%w: source id is required", domain.ErrInvalidInput)
	}

	// Vector entries and their durable embedding rows go first, then
	// the lexical index, then the chunk rows they referenced.
	if err := m.vectors.DeleteSource(ctx, sourceID); err != nil {
		return fmt.Errorf("delete vectors for %s: %w", sourceID, err)
	}
	if m.keyword != nil {
		if err := m.keyword.DeleteSource(ctx, sourceID); err != nil {
			return fmt.Errorf("delete keyword entries for %s: %w", sourceID, err)
		}
	}
	if err := m.chunkStore.DeleteBySource(ctx, sourceID); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", sourceID, err)
	}

	logger.Info("deleted source %s", sourceID)
	return nil
}

// Stats reports persisted and indexed counts for the status surfaces.
func (m *MemoryService) Stats(ctx context.Context) (*domain.MemoryStats, error) {
	sources, err := m.chunkStore.CountSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}
	chunks, err := m.chunkStore.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	embeddings, err := m.embeddingStore.CountEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("count embeddings: %w", err)
	}

	return &domain.MemoryStats{
		Sources:      sources,
		Chunks:       chunks,
		Embeddings:   embeddings,
		IndexSize:    m.vectors.Size(),
		ModelVersion: m.embedder.ModelVersion(),
		Dimensions:   m.embedder.Dimensions(),
	}, nil
}
