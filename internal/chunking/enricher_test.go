package chunking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-nn/weave/internal/core/domain"
)

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	at := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	return func() time.Time { return at }
}

func rawChunks(sourceID string, strategy domain.Strategy, contents ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = domain.Chunk{
			SourceID:   sourceID,
			Index:      i,
			Content:    content,
			Strategy:   strategy,
			TokenCount: CountTokens(content),
		}
	}
	return chunks
}

func TestEnricher_FillsIdentityFields(t *testing.T) {
	e := NewEnricher(WithSeed("pinned"), WithClock(fixedClock(t)))
	in := rawChunks("src-1", domain.StrategySemanticBoundary, "first chunk", "second chunk")

	out := e.Enrich(in)
	require.Len(t, out, 2)

	for i, ch := range out {
		assert.NotEmpty(t, ch.ID)
		assert.Len(t, ch.ID, idLength)
		assert.Equal(t, "src-1", ch.SourceID)
		assert.Equal(t, i, ch.Index)
		assert.Equal(t, HashContent(ch.Content), ch.ContentHash)
		assert.Equal(t, fixedClock(t)(), ch.Metadata.CreatedAt)
		assert.Equal(t, fixedClock(t)(), ch.Metadata.UpdatedAt)
	}
	assert.NotEqual(t, out[0].ID, out[1].ID)
}

func TestEnricher_IdempotentUnderPinnedSeed(t *testing.T) {
	in := rawChunks("src-1", domain.StrategySemanticBoundary, "alpha", "beta", "gamma")

	a := NewEnricher(WithSeed("pinned"), WithClock(fixedClock(t))).Enrich(in)
	b := NewEnricher(WithSeed("pinned"), WithClock(fixedClock(t))).Enrich(in)
	require.Equal(t, a, b)

	// Re-enriching already-enriched chunks keeps their ids.
	c := NewEnricher(WithSeed("pinned"), WithClock(fixedClock(t))).Enrich(a)
	for i := range a {
		assert.Equal(t, a[i].ID, c[i].ID)
		assert.Equal(t, a[i].ContentHash, c[i].ContentHash)
	}
}

func TestEnricher_DistinctSeedsDistinctIDs(t *testing.T) {
	in := rawChunks("src-1", domain.StrategySemanticBoundary, "alpha")

	a := NewEnricher(WithSeed("one")).Enrich(in)
	b := NewEnricher(WithSeed("two")).Enrich(in)
	assert.NotEqual(t, a[0].ID, b[0].ID)

	// Default seeds are random: two enrichers never collide.
	c := NewEnricher().Enrich(in)
	d := NewEnricher().Enrich(in)
	assert.NotEqual(t, c[0].ID, d[0].ID)
}

func TestEnricher_PrevNextLinkedList(t *testing.T) {
	e := NewEnricher(WithSeed("pinned"))
	out := e.Enrich(rawChunks("src-1", domain.StrategyEventBased, "one", "two", "three", "four"))

	require.Len(t, out, 4)
	assert.Empty(t, out[0].Metadata.PrevID)
	assert.Empty(t, out[len(out)-1].Metadata.NextID)
	for i := range out {
		if i > 0 {
			assert.Equal(t, out[i-1].ID, out[i].Metadata.PrevID)
		}
		if i < len(out)-1 {
			assert.Equal(t, out[i+1].ID, out[i].Metadata.NextID)
		}
	}
}

func TestEnricher_SingleChunkHasNoLinks(t *testing.T) {
	out := NewEnricher().Enrich(rawChunks("src-1", domain.StrategySemanticBoundary, "only"))
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Metadata.PrevID)
	assert.Empty(t, out[0].Metadata.NextID)
}

func TestEnricher_PreferenceChunksCrossReference(t *testing.T) {
	out := NewEnricher(WithSeed("pinned")).Enrich(
		rawChunks("src-1", domain.StrategyPreferenceSignal, "chose a", "chose b", "chose c"))

	require.Len(t, out, 3)
	for i, ch := range out {
		require.Len(t, ch.Metadata.RelatedIDs, 2)
		assert.NotContains(t, ch.Metadata.RelatedIDs, ch.ID, "chunk %d relates to itself", i)
		for j, other := range out {
			if j != i {
				assert.Contains(t, ch.Metadata.RelatedIDs, other.ID)
			}
		}
	}
}

func TestEnricher_NonPreferenceChunksNotRelated(t *testing.T) {
	out := NewEnricher().Enrich(rawChunks("src-1", domain.StrategyEventBased, "one", "two", "three"))
	for _, ch := range out {
		assert.Empty(t, ch.Metadata.RelatedIDs)
	}
}

func TestEnricher_DoesNotMutateInput(t *testing.T) {
	in := rawChunks("src-1", domain.StrategySemanticBoundary, "alpha", "beta")
	NewEnricher().Enrich(in)

	for _, ch := range in {
		assert.Empty(t, ch.ID)
		assert.Empty(t, ch.ContentHash)
		assert.True(t, ch.Metadata.CreatedAt.IsZero())
	}
}

func TestEnricher_PreservesExistingHashAndCreatedAt(t *testing.T) {
	created := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	in := rawChunks("src-1", domain.StrategySemanticBoundary, "alpha")
	in[0].ContentHash = HashContent("alpha")
	in[0].Metadata.CreatedAt = created

	out := NewEnricher(WithSeed("pinned"), WithClock(fixedClock(t))).Enrich(in)
	assert.Equal(t, created, out[0].Metadata.CreatedAt)
	assert.Equal(t, fixedClock(t)(), out[0].Metadata.UpdatedAt)
}

func TestEnricher_EmptyInput(t *testing.T) {
	assert.Nil(t, NewEnricher().Enrich(nil))
	assert.Nil(t, NewEnricher().Enrich([]domain.Chunk{}))
}

func TestHashContent(t *testing.T) {
	assert.Equal(t, HashContent("alpha"), HashContent("alpha"))
	assert.NotEqual(t, HashContent("alpha"), HashContent("beta"))
	assert.Len(t, HashContent("alpha"), 64) // hex sha256
}
