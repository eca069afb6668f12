package chunking

import (
	"regexp"

	"github.com/weave-nn/weave/internal/core/domain"
)

// stepMarkerRe matches line starts that open a procedural step:
// numbered items ("3." / "3)"), "Step N" lines, and bullets.
var stepMarkerRe = regexp.MustCompile(`(?mi)^\s*(?:\d{1,3}[.)]\s+|step\s+\d+\s*[:.)]?\s+|[-*]\s+)`)

// StepBasedChunker splits on ordinal/step markers. Each step becomes
// its own chunk and two steps are never merged, even when a step falls
// under the token minimum; oversized steps are subdivided. Chunk
// indexes follow step order.
type StepBasedChunker struct {
	cfg Config
}

// NewStepBased creates a step-based chunker with the default 256–384
// token range.
func NewStepBased(opts ...Option) *StepBasedChunker {
	return &StepBasedChunker{cfg: newConfig(DefaultStepMin, DefaultStepMax, opts...)}
}

// Strategy returns domain.StrategyStepBased.
func (c *StepBasedChunker) Strategy() domain.Strategy {
	return domain.StrategyStepBased
}

// Chunk emits one chunk per step. Text before the first marker joins
// the first step when that stays within the maximum, otherwise it is
// emitted on its own. Content without markers falls back to fixed-size
// windowing; content shorter than the minimum emits one chunk.
func (c *StepBasedChunker) Chunk(content string) ([]domain.Chunk, error) {
	toks := Tokenize(content)
	n := len(toks)
	if n == 0 {
		return nil, nil
	}

	marks := stepMarkerRe.FindAllStringIndex(content, -1)
	steps := c.stepSpans(toks, marks, n)
	if len(steps) <= 1 {
		if n < c.cfg.MinTokens {
			return emitSpans(content, toks, []span{{0, n}}, c.Strategy(), c.cfg.ContextWindow), nil
		}
		return emitSpans(content, toks, balancedSpans(n, c.cfg.MinTokens, c.cfg.MaxTokens), c.Strategy(), c.cfg.ContextWindow), nil
	}

	var spans []span
	for _, st := range steps {
		if st.size() > c.cfg.MaxTokens {
			spans = append(spans, subdivide(st, c.cfg.MinTokens, c.cfg.MaxTokens)...)
			continue
		}
		// Undersized steps are emitted as-is: steps never merge.
		spans = append(spans, st)
	}

	return emitSpans(content, toks, spans, c.Strategy(), c.cfg.ContextWindow), nil
}

// stepSpans converts marker byte offsets into one token span per step.
// A preamble shorter than the minimum joins the first step when the
// combined size stays within the maximum.
func (c *StepBasedChunker) stepSpans(toks []Token, marks [][]int, n int) []span {
	var steps []span
	prev := 0
	for _, m := range marks {
		idx := tokenIndexAt(toks, m[0])
		if idx > prev && idx < n {
			steps = append(steps, span{prev, idx})
			prev = idx
		}
	}
	if prev < n {
		steps = append(steps, span{prev, n})
	}

	// Only a true preamble (text before the first marker) may join the
	// first step; the steps themselves never merge.
	preamble := len(marks) > 0 && tokenIndexAt(toks, marks[0][0]) > 0
	if preamble && len(steps) >= 2 && steps[0].size() < c.cfg.MinTokens &&
		steps[1].end-steps[0].start <= c.cfg.MaxTokens {
		steps[1].start = steps[0].start
		steps = steps[1:]
	}
	return steps
}
