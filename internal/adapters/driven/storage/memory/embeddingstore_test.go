package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-nn/weave/internal/core/domain"
)

func embedding(id, chunkID string, vector ...float32) *domain.Embedding {
	return &domain.Embedding{
		ID:           id,
		ChunkID:      chunkID,
		Vector:       vector,
		ModelVersion: "test-model@2",
	}
}

// fixtureStores returns a chunk store pre-loaded with chunks c1..c3 on
// two sources and an embedding store joined to it.
func fixtureStores(t *testing.T) (*ChunkStore, *EmbeddingStore) {
	t.Helper()
	chunks := NewChunkStore()
	err := chunks.SaveChunks(context.Background(), []domain.Chunk{
		chunk("c1", "src-a", 0),
		chunk("c2", "src-a", 1),
		chunk("c3", "src-b", 0),
	})
	require.NoError(t, err)
	return chunks, NewEmbeddingStore(chunks)
}

func TestEmbeddingStore_SaveRequiresChunk(t *testing.T) {
	_, store := fixtureStores(t)

	err := store.SaveEmbedding(context.Background(), embedding("e1", "no-such-chunk", 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEmbeddingStore_SaveValidation(t *testing.T) {
	_, store := fixtureStores(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveEmbedding(ctx, embedding("", "c1", 1)), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SaveEmbedding(ctx, embedding("e1", "", 1)), domain.ErrInvalidInput)
}

func TestEmbeddingStore_ScanJoinsChunkMetadata(t *testing.T) {
	_, store := fixtureStores(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmbedding(ctx, embedding("e1", "c1", 1, 0)))
	require.NoError(t, store.SaveEmbedding(ctx, embedding("e3", "c3", 0, 1)))

	entries, err := store.ScanEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "src-a", entries[0].SourceID)
	assert.Equal(t, domain.StrategySemanticBoundary, entries[0].Strategy)
	assert.Equal(t, []float32{1, 0}, entries[0].Vector)

	assert.Equal(t, "src-b", entries[1].SourceID)
}

func TestEmbeddingStore_ScanSkipsOrphanedRows(t *testing.T) {
	chunks, store := fixtureStores(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmbedding(ctx, embedding("e1", "c1", 1)))
	require.NoError(t, store.SaveEmbedding(ctx, embedding("e3", "c3", 3)))

	// Dropping the chunk orphans its embedding row; the scan joins it away.
	require.NoError(t, chunks.DeleteBySource(ctx, "src-a"))

	entries, err := store.ScanEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e3", entries[0].ID)
}

func TestEmbeddingStore_UpsertKeepsInsertionSlot(t *testing.T) {
	_, store := fixtureStores(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmbedding(ctx, embedding("e1", "c1", 1)))
	require.NoError(t, store.SaveEmbedding(ctx, embedding("e2", "c2", 2)))

	// Re-saving chunk c1 under the same model replaces the row in place.
	require.NoError(t, store.SaveEmbedding(ctx, embedding("e1b", "c1", 9)))

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	entries, err := store.ScanEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1b", entries[0].ID, "replaced row keeps its original scan position")
	assert.Equal(t, []float32{9}, entries[0].Vector)
	assert.Equal(t, "e2", entries[1].ID)
}

func TestEmbeddingStore_DistinctModelVersionsCoexist(t *testing.T) {
	_, store := fixtureStores(t)
	ctx := context.Background()

	first := embedding("e1", "c1", 1)
	second := embedding("e2", "c1", 2)
	second.ModelVersion = "other-model@1"

	require.NoError(t, store.SaveEmbedding(ctx, first))
	require.NoError(t, store.SaveEmbedding(ctx, second))

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEmbeddingStore_DeleteEmbedding(t *testing.T) {
	_, store := fixtureStores(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmbedding(ctx, embedding("e1", "c1", 1)))
	require.NoError(t, store.DeleteEmbedding(ctx, "e1"))

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Unknown id is a no-op.
	assert.NoError(t, store.DeleteEmbedding(ctx, "e1"))
}

func TestEmbeddingStore_DeleteBySource(t *testing.T) {
	_, store := fixtureStores(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEmbedding(ctx, embedding("e1", "c1", 1)))
	require.NoError(t, store.SaveEmbedding(ctx, embedding("e2", "c2", 2)))
	require.NoError(t, store.SaveEmbedding(ctx, embedding("e3", "c3", 3)))

	require.NoError(t, store.DeleteBySource(ctx, "src-a"))

	entries, err := store.ScanEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e3", entries[0].ID)
}
