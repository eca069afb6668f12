package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[string]domain.Chunk),
	}
}

// SaveChunks stores or updates a batch of chunks.
func (s *ChunkStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// GetChunks retrieves chunks by ID, preserving request order and
// skipping unknown ids.
func (s *ChunkStore) GetChunks(_ context.Context, ids []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for _, id := range ids {
		if chunk, ok := s.chunks[id]; ok {
			result = append(result, chunk)
		}
	}
	return result, nil
}

// ListBySource returns all chunks for a source ordered by index.
func (s *ChunkStore) ListBySource(_ context.Context, sourceID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for id := range s.chunks {
		if s.chunks[id].SourceID == sourceID {
			result = append(result, s.chunks[id])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result, nil
}

// NextIndex returns the next free ordinal for a source.
func (s *ChunkStore) NextIndex(_ context.Context, sourceID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := 0
	for _, chunk := range s.chunks {
		if chunk.SourceID == sourceID && chunk.Index >= next {
			next = chunk.Index + 1
		}
	}
	return next, nil
}

// DeleteBySource removes all chunks for a source. Unlike the SQLite
// adapter there is no foreign-key cascade here; embedding rows are the
// embedding store's problem.
func (s *ChunkStore) DeleteBySource(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, chunk := range s.chunks {
		if chunk.SourceID == sourceID {
			delete(s.chunks, id)
		}
	}
	return nil
}

// CountChunks returns the total number of stored chunks.
func (s *ChunkStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// CountSources returns the number of distinct source ids.
func (s *ChunkStore) CountSources(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, chunk := range s.chunks {
		seen[chunk.SourceID] = struct{}{}
	}
	return len(seen), nil
}
