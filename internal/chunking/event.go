package chunking

import (
	"regexp"

	"github.com/weave-nn/weave/internal/core/domain"
)

// phaseMarkerRe matches lines that open a new phase of an experience:
// markdown headers naming a phase, "Phase N" lines, bracketed phase
// tags, and bare "phase:" prefixes.
var phaseMarkerRe = regexp.MustCompile(
	`(?mi)^(?:` +
		`#{1,6}\s+.*\b(?:phase|perception|planning|reasoning|execution|reflection|observation)\b.*` +
		`|phase\s+\d+\b.*` +
		`|\[(?:perception|planning|reasoning|execution|reflection|observation)\].*` +
		`|(?:perception|planning|reasoning|execution|reflection|observation)\s*:.*` +
		`)$`)

// EventBasedChunker splits on explicit phase-transition markers,
// emitting one chunk per phase in source order. Oversized phases are
// subdivided; undersized phases merge into the preceding one. After
// enrichment, adjacent chunks form a strict prev/next linked list.
type EventBasedChunker struct {
	cfg Config
}

// NewEventBased creates an event-based chunker with the default
// 128–512 token range.
func NewEventBased(opts ...Option) *EventBasedChunker {
	return &EventBasedChunker{cfg: newConfig(DefaultEventMin, DefaultEventMax, opts...)}
}

// Strategy returns domain.StrategyEventBased.
func (c *EventBasedChunker) Strategy() domain.Strategy {
	return domain.StrategyEventBased
}

// Chunk segments content at phase markers. Content without a single
// marker falls back to fixed-size windowing; content shorter than the
// minimum emits one chunk.
func (c *EventBasedChunker) Chunk(content string) ([]domain.Chunk, error) {
	toks := Tokenize(content)
	n := len(toks)
	if n == 0 {
		return nil, nil
	}
	if n < c.cfg.MinTokens {
		return emitSpans(content, toks, []span{{0, n}}, c.Strategy(), c.cfg.ContextWindow), nil
	}

	marks := phaseMarkerRe.FindAllStringIndex(content, -1)
	events := c.eventSpans(toks, marks, n)
	if len(events) <= 1 {
		return emitSpans(content, toks, balancedSpans(n, c.cfg.MinTokens, c.cfg.MaxTokens), c.Strategy(), c.cfg.ContextWindow), nil
	}

	var spans []span
	for _, ev := range events {
		switch {
		case ev.size() > c.cfg.MaxTokens:
			spans = append(spans, subdivide(ev, c.cfg.MinTokens, c.cfg.MaxTokens)...)
		case ev.size() < c.cfg.MinTokens && len(spans) > 0 && spans[len(spans)-1].end == ev.start &&
			spans[len(spans)-1].size()+ev.size() <= c.cfg.MaxTokens:
			// Best-effort merge of an undersized phase into its
			// predecessor, keeping temporal order.
			spans[len(spans)-1].end = ev.end
		default:
			spans = append(spans, ev)
		}
	}

	return emitSpans(content, toks, spans, c.Strategy(), c.cfg.ContextWindow), nil
}

// eventSpans converts marker byte offsets into contiguous token spans,
// one per phase, covering the whole text. A preamble before the first
// marker becomes its own span.
func (c *EventBasedChunker) eventSpans(toks []Token, marks [][]int, n int) []span {
	var events []span
	prev := 0
	for _, m := range marks {
		idx := tokenIndexAt(toks, m[0])
		if idx > prev && idx < n {
			events = append(events, span{prev, idx})
			prev = idx
		}
	}
	if prev < n {
		events = append(events, span{prev, n})
	}
	return events
}
