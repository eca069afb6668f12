package chunking

import (
	"strings"

	"github.com/weave-nn/weave/internal/core/domain"
)

// classifications maps content classification labels to strategies.
// The mapping is deterministic and one-to-one per label; labels are
// matched lowercased.
var classifications = map[string]domain.Strategy{
	"event":        domain.StrategyEventBased,
	"experience":   domain.StrategyEventBased,
	"episode":      domain.StrategyEventBased,
	"conversation": domain.StrategyEventBased,

	"semantic":   domain.StrategySemanticBoundary,
	"note":       domain.StrategySemanticBoundary,
	"reflection": domain.StrategySemanticBoundary,
	"document":   domain.StrategySemanticBoundary,

	"preference": domain.StrategyPreferenceSignal,
	"decision":   domain.StrategyPreferenceSignal,

	"step":       domain.StrategyStepBased,
	"procedure":  domain.StrategyStepBased,
	"procedural": domain.StrategyStepBased,
}

// Selector owns the chunker registry and maps content classifications
// to chunkers. Unknown classifications fall back to the
// semantic-boundary chunker; a failing chunker is surfaced as a
// domain.ChunkingError, never silently replaced.
type Selector struct {
	chunkers map[domain.Strategy]Chunker
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithChunker replaces the registered chunker for its strategy.
func WithChunker(c Chunker) SelectorOption {
	return func(s *Selector) {
		s.chunkers[c.Strategy()] = c
	}
}

// NewSelector creates a selector with all four default chunkers
// registered.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		chunkers: map[domain.Strategy]Chunker{
			domain.StrategyEventBased:       NewEventBased(),
			domain.StrategySemanticBoundary: NewSemanticBoundary(),
			domain.StrategyPreferenceSignal: NewPreferenceSignal(),
			domain.StrategyStepBased:        NewStepBased(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select resolves a classification label to a chunker. Strategy names
// themselves are accepted as labels. Unknown labels resolve to the
// semantic-boundary chunker.
func (s *Selector) Select(classification string) Chunker {
	label := strings.ToLower(strings.TrimSpace(classification))

	if strat := domain.Strategy(label); strat.Valid() {
		return s.chunkers[strat]
	}
	if strat, ok := classifications[label]; ok {
		return s.chunkers[strat]
	}
	return s.chunkers[domain.StrategySemanticBoundary]
}

// Chunk selects a chunker for the classification and runs it. A
// chunker failure surfaces as *domain.ChunkingError naming the
// strategy that failed.
func (s *Selector) Chunk(content, classification string) ([]domain.Chunk, error) {
	chunker := s.Select(classification)
	chunks, err := chunker.Chunk(content)
	if err != nil {
		return nil, &domain.ChunkingError{Strategy: chunker.Strategy(), Cause: err}
	}
	return chunks, nil
}
