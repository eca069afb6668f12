package chunking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-nn/weave/internal/core/domain"
)

func TestSelector_ClassificationMapping(t *testing.T) {
	s := NewSelector()

	tests := []struct {
		classification string
		want           domain.Strategy
	}{
		{"event", domain.StrategyEventBased},
		{"experience", domain.StrategyEventBased},
		{"episode", domain.StrategyEventBased},
		{"conversation", domain.StrategyEventBased},
		{"semantic", domain.StrategySemanticBoundary},
		{"note", domain.StrategySemanticBoundary},
		{"reflection", domain.StrategySemanticBoundary},
		{"document", domain.StrategySemanticBoundary},
		{"preference", domain.StrategyPreferenceSignal},
		{"decision", domain.StrategyPreferenceSignal},
		{"step", domain.StrategyStepBased},
		{"procedure", domain.StrategyStepBased},
		{"procedural", domain.StrategyStepBased},

		// Strategy names are accepted directly.
		{"event-based", domain.StrategyEventBased},
		{"semantic-boundary", domain.StrategySemanticBoundary},
		{"preference-signal", domain.StrategyPreferenceSignal},
		{"step-based", domain.StrategyStepBased},

		// Case and surrounding space do not matter.
		{"  Decision  ", domain.StrategyPreferenceSignal},
		{"EVENT", domain.StrategyEventBased},

		// Unknown labels fall back to semantic-boundary.
		{"", domain.StrategySemanticBoundary},
		{"gibberish", domain.StrategySemanticBoundary},
	}
	for _, tt := range tests {
		t.Run(tt.classification, func(t *testing.T) {
			got := s.Select(tt.classification)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Strategy())
		})
	}
}

func TestSelector_Deterministic(t *testing.T) {
	s := NewSelector()
	first := s.Select("experience").Strategy()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Select("experience").Strategy())
	}
}

func TestSelector_ChunkAppliesStrategy(t *testing.T) {
	s := NewSelector()

	chunks, err := s.Chunk(makeProse(t, 500), "note")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.Equal(t, domain.StrategySemanticBoundary, ch.Strategy)
	}
}

type failingChunker struct {
	strategy domain.Strategy
	err      error
}

func (f *failingChunker) Strategy() domain.Strategy { return f.strategy }

func (f *failingChunker) Chunk(string) ([]domain.Chunk, error) { return nil, f.err }

func TestSelector_ChunkerFailureSurfaced(t *testing.T) {
	cause := errors.New("marker scan failed")
	s := NewSelector(WithChunker(&failingChunker{
		strategy: domain.StrategyEventBased,
		err:      cause,
	}))

	chunks, err := s.Chunk("some content", "event")
	require.Error(t, err)
	assert.Nil(t, chunks)

	var cerr *domain.ChunkingError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, domain.StrategyEventBased, cerr.Strategy)
	assert.ErrorIs(t, err, cause)
}

func TestSelector_WithChunkerOverridesDefault(t *testing.T) {
	custom := NewSemanticBoundary(WithTargetTokens(100))
	s := NewSelector(WithChunker(custom))

	chunks, err := s.Chunk(makeProse(t, 300), "semantic")
	require.NoError(t, err)
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.TokenCount, 120)
	}
}
