package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-nn/weave/internal/adapters/driven/storage/memory"
	"github.com/weave-nn/weave/internal/chunking"
	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/vectorstore"
)

const testDims = 4

// memoryFixture wires a full indexing pipeline over in-memory storage:
// real chunking and vector store, mocked keyword engine and embedding
// provider.
type memoryFixture struct {
	svc        *MemoryService
	chunkStore *memory.ChunkStore
	embStore   *memory.EmbeddingStore
	keyword    *mockKeywordSearcher
	vectors    *vectorstore.Store
	embedder   *mockEmbeddingProvider
}

func newMemoryFixture(t *testing.T, opts ...chunking.SelectorOption) *memoryFixture {
	t.Helper()

	chunkStore := memory.NewChunkStore()
	embStore := memory.NewEmbeddingStore(chunkStore)
	embedder := &mockEmbeddingProvider{
		dims:  testDims,
		model: "test-model",
		embedFn: func(text string) []float32 {
			// Deterministic per-text vector, never zero.
			n := float32(len(text))
			return []float32{1, n / 100, float32(int(n) % 7), 0.5}
		},
	}
	vectors := vectorstore.New(embStore, "test-model", testDims,
		vectorstore.WithClock(func() time.Time { return time.Unix(1700000000, 0) }))
	keyword := &mockKeywordSearcher{}

	svc, err := NewMemoryService(
		chunking.NewSelector(opts...),
		chunking.NewEnricher(chunking.WithSeed("test-seed"),
			chunking.WithClock(func() time.Time { return time.Unix(1700000000, 0) })),
		chunkStore, embStore, keyword, vectors, embedder,
	)
	require.NoError(t, err)

	return &memoryFixture{
		svc:        svc,
		chunkStore: chunkStore,
		embStore:   embStore,
		keyword:    keyword,
		vectors:    vectors,
		embedder:   embedder,
	}
}

// fiveHundredTokens builds a document of exactly 500 whitespace tokens:
// fifty ten-word sentences cycling through distinct topic vocabulary so
// the semantic chunker sees genuine topic shifts.
func fiveHundredTokens() string {
	topics := []string{"storage", "networking", "compilers", "scheduling", "caching"}
	var b strings.Builder
	for i := 0; i < 50; i++ {
		topic := topics[i/10]
		fmt.Fprintf(&b, "observation %d covers the %s subsystem handling workload number %d. ",
			i, topic, i*3)
	}
	return strings.TrimSpace(b.String())
}

func TestChunkAndIndex_SemanticDocument(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	doc := fiveHundredTokens()
	require.Equal(t, 500, chunking.CountTokens(doc))

	chunks, err := f.svc.ChunkAndIndex(ctx, doc, "exp-001", "semantic")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i := range chunks {
		assert.Equal(t, domain.StrategySemanticBoundary, chunks[i].Strategy)
		assert.GreaterOrEqual(t, chunks[i].TokenCount, 307,
			"chunk %d below the 384-20%% floor", i)
		assert.LessOrEqual(t, chunks[i].TokenCount, 461,
			"chunk %d above the 384+20%% ceiling", i)
		assert.Equal(t, "exp-001", chunks[i].SourceID)
		assert.Equal(t, i, chunks[i].Index)
		assert.NotEmpty(t, chunks[i].ID)
		assert.NotEmpty(t, chunks[i].ContentHash)
	}

	// Every layer saw every chunk.
	stored, err := f.chunkStore.ListBySource(ctx, "exp-001")
	require.NoError(t, err)
	assert.Len(t, stored, len(chunks))
	assert.Len(t, f.keyword.indexed, len(chunks))
	assert.Equal(t, len(chunks), f.vectors.Size())

	count, err := f.embStore.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(chunks), count)
}

func TestChunkAndIndex_AppendOnly(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	first, err := f.svc.ChunkAndIndex(ctx, "the first recorded experience for this source.", "exp-002", "semantic")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.svc.ChunkAndIndex(ctx, "a later, different experience appended afterwards.", "exp-002", "semantic")
	require.NoError(t, err)
	require.Len(t, second, 1)

	// Ordinals continue across calls; ids never repeat.
	assert.Equal(t, 0, first[0].Index)
	assert.Equal(t, 1, second[0].Index)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	all, err := f.chunkStore.ListBySource(ctx, "exp-002")
	require.NoError(t, err)
	require.Len(t, all, 2)

	seen := make(map[int]bool)
	for _, c := range all {
		assert.False(t, seen[c.Index], "duplicate (sourceID, index) pair")
		seen[c.Index] = true
	}
}

func TestChunkAndIndex_EmptyContent(t *testing.T) {
	f := newMemoryFixture(t)

	chunks, err := f.svc.ChunkAndIndex(context.Background(), "   \n ", "exp-003", "semantic")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Equal(t, 0, f.vectors.Size())
}

func TestChunkAndIndex_MissingSourceID(t *testing.T) {
	f := newMemoryFixture(t)

	_, err := f.svc.ChunkAndIndex(context.Background(), "some content", "", "semantic")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// failingChunker always errors, standing in for a strategy-specific
// segmentation failure.
type failingChunker struct{}

func (failingChunker) Strategy() domain.Strategy { return domain.StrategyEventBased }

func (failingChunker) Chunk(string) ([]domain.Chunk, error) {
	return nil, errors.New("marker table corrupted")
}

func TestChunkAndIndex_ChunkingFailureSurfaced(t *testing.T) {
	f := newMemoryFixture(t, chunking.WithChunker(failingChunker{}))

	_, err := f.svc.ChunkAndIndex(context.Background(), "phase one began", "exp-004", "event")
	require.Error(t, err)

	var chunkErr *domain.ChunkingError
	require.ErrorAs(t, err, &chunkErr, "failure must name the strategy, not silently fall back")
	assert.Equal(t, domain.StrategyEventBased, chunkErr.Strategy)
}

func TestChunkAndIndex_EmbedFailureStoresNothing(t *testing.T) {
	f := newMemoryFixture(t)
	f.embedder.batchErr = errors.New("provider overloaded")
	ctx := context.Background()

	_, err := f.svc.ChunkAndIndex(ctx, "content that will fail to embed", "exp-005", "semantic")
	require.Error(t, err)

	// All-or-nothing: no partial generation lands anywhere.
	count, err := f.chunkStore.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, f.keyword.indexed)
	assert.Equal(t, 0, f.vectors.Size())
}

func TestDeleteSource_CascadesAndIsIdempotent(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	_, err := f.svc.ChunkAndIndex(ctx, "a memorable experience worth deleting later.", "exp-006", "semantic")
	require.NoError(t, err)
	_, err = f.svc.ChunkAndIndex(ctx, "an unrelated experience that must survive.", "exp-007", "semantic")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSource(ctx, "exp-006"))

	remaining, err := f.chunkStore.ListBySource(ctx, "exp-006")
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Contains(t, f.keyword.deletedSources, "exp-006")
	assert.Equal(t, 1, f.vectors.Size(), "other source's entry survives")

	// Deleting again is a no-op, not an error.
	require.NoError(t, f.svc.DeleteSource(ctx, "exp-006"))
}

func TestStats(t *testing.T) {
	f := newMemoryFixture(t)
	ctx := context.Background()

	_, err := f.svc.ChunkAndIndex(ctx, "first experience for the stats surface.", "exp-008", "semantic")
	require.NoError(t, err)
	_, err = f.svc.ChunkAndIndex(ctx, "second experience from another source.", "exp-009", "semantic")
	require.NoError(t, err)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Sources)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 2, stats.Embeddings)
	assert.Equal(t, 2, stats.IndexSize)
	assert.Equal(t, "test-model", stats.ModelVersion)
	assert.Equal(t, testDims, stats.Dimensions)
}
