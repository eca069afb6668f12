package services

import (
	"context"
	"sync"

	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// mockKeywordSearcher implements driven.KeywordSearcher for testing.
type mockKeywordSearcher struct {
	mu             sync.Mutex
	hits           []driven.KeywordHit
	searchErr      error
	indexErr       error
	indexed        []domain.Chunk
	deletedSources []string
}

var _ driven.KeywordSearcher = (*mockKeywordSearcher)(nil)

func (m *mockKeywordSearcher) Index(_ context.Context, chunk domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexErr != nil {
		return m.indexErr
	}
	m.indexed = append(m.indexed, chunk)
	return nil
}

func (m *mockKeywordSearcher) Delete(_ context.Context, _ string) error {
	return nil
}

func (m *mockKeywordSearcher) DeleteSource(_ context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedSources = append(m.deletedSources, sourceID)
	return nil
}

func (m *mockKeywordSearcher) Search(_ context.Context, _ string, limit int) ([]driven.KeywordHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:limit], nil
}

func (m *mockKeywordSearcher) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	mu             sync.Mutex
	hits           []driven.VectorHit
	searchErr      error
	storeErr       error
	stored         []domain.VectorEntry
	deletedSources []string
}

var _ driven.VectorIndex = (*mockVectorIndex)(nil)

func (m *mockVectorIndex) Store(_ context.Context, entry domain.VectorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.stored = append(m.stored, entry)
	return nil
}

func (m *mockVectorIndex) Delete(_ context.Context, _ string) error { return nil }

func (m *mockVectorIndex) DeleteSource(_ context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedSources = append(m.deletedSources, sourceID)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int, _ driven.VectorFilter) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) LoadIndex(_ context.Context) error { return nil }

func (m *mockVectorIndex) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stored)
}

func (m *mockVectorIndex) Close() error { return nil }

// mockEmbeddingProvider implements driven.EmbeddingProvider for
// testing. Embeddings are deterministic: every text maps to the fixed
// vector unless embedFn overrides it.
type mockEmbeddingProvider struct {
	vector   []float32
	embedFn  func(text string) []float32
	embedErr error
	batchErr error
	dims     int
	model    string
}

var _ driven.EmbeddingProvider = (*mockEmbeddingProvider)(nil)

func (m *mockEmbeddingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.embedFn != nil {
		return m.embedFn(text), nil
	}
	return m.vector, nil
}

func (m *mockEmbeddingProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if m.embedFn != nil {
			out[i] = m.embedFn(text)
		} else {
			out[i] = m.vector
		}
	}
	return out, nil
}

func (m *mockEmbeddingProvider) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return len(m.vector)
}

func (m *mockEmbeddingProvider) ModelVersion() string {
	if m.model != "" {
		return m.model
	}
	return "mock-model"
}

func (m *mockEmbeddingProvider) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingProvider) Close() error { return nil }
