package chunking

import (
	"github.com/weave-nn/weave/internal/core/domain"
)

// SemanticBoundaryChunker cuts where lexical similarity between
// adjacent windows dips below the configured threshold. Emitted sizes
// stay within the configured range (target ±20% by default); the range
// guarantee wins over dip placement when the two conflict.
//
// It is the fallback strategy for unknown classifications.
type SemanticBoundaryChunker struct {
	cfg Config
}

// NewSemanticBoundary creates a semantic-boundary chunker with the
// default 384±20% token range.
func NewSemanticBoundary(opts ...Option) *SemanticBoundaryChunker {
	return &SemanticBoundaryChunker{
		cfg: newConfig(DefaultSemanticTarget*4/5, (DefaultSemanticTarget*6+4)/5, opts...),
	}
}

// Strategy returns domain.StrategySemanticBoundary.
func (c *SemanticBoundaryChunker) Strategy() domain.Strategy {
	return domain.StrategySemanticBoundary
}

// Chunk segments content at topic shifts.
//
// Sentence segments accumulate into the current span. A cut happens at
// a segment boundary when the similarity between the trailing and
// leading windows dips below the threshold and the span has reached the
// minimum, or unconditionally when the next segment would overflow the
// maximum. Content with no sentence boundaries falls back to fixed-size
// windowing; a short tail backfills into preceding tokens to honour the
// minimum, accepting overlap.
func (c *SemanticBoundaryChunker) Chunk(content string) ([]domain.Chunk, error) {
	toks := Tokenize(content)
	n := len(toks)
	if n == 0 {
		return nil, nil
	}
	if n <= c.cfg.MaxTokens {
		return emitSpans(content, toks, []span{{0, n}}, c.Strategy(), c.cfg.ContextWindow), nil
	}

	segs := segmentsFromBoundaries(toks, FindBoundaries(content))
	if len(segs) <= 1 {
		// No detectable boundaries: fixed-size windowing at the target.
		return emitSpans(content, toks, balancedSpans(n, c.cfg.MinTokens, c.cfg.MaxTokens), c.Strategy(), c.cfg.ContextWindow), nil
	}

	var spans []span
	cur := segs[0]
	for _, seg := range segs[1:] {
		switch {
		case seg.end-cur.start > c.cfg.MaxTokens:
			if cur.size() >= c.cfg.MinTokens {
				spans = append(spans, cur)
				cur = seg
			} else {
				// The segment alone overflows what remains: absorb it
				// and re-balance rather than emit an undersized span.
				cur.end = seg.end
			}
			if cur.size() > c.cfg.MaxTokens {
				parts := subdivide(cur, c.cfg.MinTokens, c.cfg.MaxTokens)
				spans = append(spans, parts[:len(parts)-1]...)
				cur = parts[len(parts)-1]
			}
		case cur.size() >= c.cfg.MinTokens && c.dipAt(content, toks, cur, seg):
			spans = append(spans, cur)
			cur = seg
		default:
			cur.end = seg.end
		}
	}

	if cur.size() < c.cfg.MinTokens && len(spans) > 0 && cur.end >= c.cfg.MinTokens {
		// Backfill the tail into preceding tokens to reach the minimum.
		cur.start = cur.end - c.cfg.MinTokens
	}
	spans = append(spans, cur)

	return emitSpans(content, toks, spans, c.Strategy(), c.cfg.ContextWindow), nil
}

// dipAt reports whether the boundary between the current span and the
// next segment is a topic shift: similarity of the windows on each side
// falls below the threshold.
func (c *SemanticBoundaryChunker) dipAt(src string, toks []Token, cur, next span) bool {
	w := c.cfg.ContextWindow
	if w <= 0 {
		w = DefaultContextWindow
	}

	tailStart := cur.end - w
	if tailStart < cur.start {
		tailStart = cur.start
	}
	headEnd := next.start + w
	if headEnd > next.end {
		headEnd = next.end
	}

	tail := sliceText(src, toks, tailStart, cur.end)
	head := sliceText(src, toks, next.start, headEnd)
	return Similarity(tail, head) < c.cfg.SimilarityThreshold
}
