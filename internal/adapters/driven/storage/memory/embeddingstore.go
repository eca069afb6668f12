package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// Ensure EmbeddingStore implements the interface.
var _ driven.EmbeddingStore = (*EmbeddingStore)(nil)

// EmbeddingStore is an in-memory implementation of driven.EmbeddingStore.
// It joins against a ChunkStore the way the SQLite adapter joins the
// chunks table, so the two can stand in for each other in tests:
// SaveEmbedding requires the chunk row to exist, and ScanEntries skips
// embeddings whose chunk has been deleted.
type EmbeddingStore struct {
	mu     sync.RWMutex
	chunks *ChunkStore
	order  []string                    // upsert keys in insertion order
	rows   map[string]domain.Embedding // by upsert key
}

// NewEmbeddingStore creates a new in-memory embedding store joined to
// the given chunk store.
func NewEmbeddingStore(chunks *ChunkStore) *EmbeddingStore {
	return &EmbeddingStore{
		chunks: chunks,
		rows:   make(map[string]domain.Embedding),
	}
}

// upsertKey is the (chunk_id, model_version) identity of a row.
func upsertKey(chunkID, modelVersion string) string {
	return chunkID + "\x00" + modelVersion
}

// SaveEmbedding stores an embedding, upserting on (chunk_id, model_version).
func (s *EmbeddingStore) SaveEmbedding(ctx context.Context, emb *domain.Embedding) error {
	if emb.ID == "" || emb.ChunkID == "" {
		return domain.ErrInvalidInput
	}

	if _, err := s.chunks.GetChunk(ctx, emb.ChunkID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("saving embedding: chunk %s: %w", emb.ChunkID, err)
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := upsertKey(emb.ChunkID, emb.ModelVersion)
	if _, exists := s.rows[key]; !exists {
		s.order = append(s.order, key)
	}
	s.rows[key] = *emb
	return nil
}

// DeleteEmbedding removes an embedding by ID. Unknown ids are a no-op.
func (s *EmbeddingStore) DeleteEmbedding(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, key := range s.order {
		if s.rows[key].ID == id {
			delete(s.rows, key)
			s.order = append(s.order[:i], s.order[i+1:]...)
			return nil
		}
	}
	return nil
}

// DeleteBySource removes all embeddings whose chunks belong to a source.
func (s *EmbeddingStore) DeleteBySource(ctx context.Context, sourceID string) error {
	chunks, err := s.chunks.ListBySource(ctx, sourceID)
	if err != nil {
		return err
	}
	drop := make(map[string]struct{}, len(chunks))
	for _, chunk := range chunks {
		drop[chunk.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	for _, key := range s.order {
		if _, gone := drop[s.rows[key].ChunkID]; gone {
			delete(s.rows, key)
			continue
		}
		kept = append(kept, key)
	}
	s.order = kept
	return nil
}

// ScanEntries returns every stored embedding joined with its chunk's
// filter metadata, in insertion order. Rows whose chunk no longer
// exists are omitted, matching the SQL join.
func (s *EmbeddingStore) ScanEntries(ctx context.Context) ([]domain.VectorEntry, error) {
	s.mu.RLock()
	keys := append([]string(nil), s.order...)
	rows := make([]domain.Embedding, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, s.rows[key])
	}
	s.mu.RUnlock()

	var entries []domain.VectorEntry
	for _, row := range rows {
		chunk, err := s.chunks.GetChunk(ctx, row.ChunkID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.VectorEntry{
			ID:       row.ID,
			ChunkID:  row.ChunkID,
			SourceID: chunk.SourceID,
			Strategy: chunk.Strategy,
			Vector:   row.Vector,
		})
	}
	return entries, nil
}

// CountEmbeddings returns the total number of stored embeddings.
func (s *EmbeddingStore) CountEmbeddings(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows), nil
}
