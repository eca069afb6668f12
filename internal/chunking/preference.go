package chunking

import (
	"strings"

	"github.com/weave-nn/weave/internal/core/domain"
)

// decisionMarkers flag sentences that express a choice or preference.
// Matched case-insensitively against whole words.
var decisionMarkers = []string{
	"decided", "decision", "chose", "chosen", "choose", "opted",
	"prefer", "preferred", "preference", "instead", "rather",
	"settled on", "went with", "going with", "picked",
}

// PreferenceSignalChunker extracts decision-point spans: sentences
// containing decision markers, grown with neighbouring sentences to the
// 64–128 token range. It has the smallest target range of the four
// strategies.
type PreferenceSignalChunker struct {
	cfg Config
}

// NewPreferenceSignal creates a preference-signal chunker with the
// default 64–128 token range.
func NewPreferenceSignal(opts ...Option) *PreferenceSignalChunker {
	return &PreferenceSignalChunker{cfg: newConfig(DefaultPreferenceMin, DefaultPreferenceMax, opts...)}
}

// Strategy returns domain.StrategyPreferenceSignal.
func (c *PreferenceSignalChunker) Strategy() domain.Strategy {
	return domain.StrategyPreferenceSignal
}

// Chunk extracts one chunk per decision point. A sentence already
// covered by an earlier span is not extracted twice. Content without
// markers falls back to fixed-size windowing at the target; content
// shorter than the minimum emits one chunk.
func (c *PreferenceSignalChunker) Chunk(content string) ([]domain.Chunk, error) {
	toks := Tokenize(content)
	n := len(toks)
	if n == 0 {
		return nil, nil
	}
	if n < c.cfg.MinTokens {
		return emitSpans(content, toks, []span{{0, n}}, c.Strategy(), c.cfg.ContextWindow), nil
	}

	segs := segmentsFromBoundaries(toks, FindBoundaries(content))
	marked := c.markedSegments(content, toks, segs)
	if len(marked) == 0 {
		return emitSpans(content, toks, balancedSpans(n, c.cfg.MinTokens, c.cfg.MaxTokens), c.Strategy(), c.cfg.ContextWindow), nil
	}

	var spans []span
	covered := -1 // highest segment index consumed so far
	for _, mi := range marked {
		if mi <= covered {
			continue
		}
		sp, last := c.grow(segs, mi, covered)
		covered = last
		if sp.size() > c.cfg.MaxTokens {
			// A single oversized decision sentence: window it down.
			spans = append(spans, subdivide(sp, c.cfg.MinTokens, c.cfg.MaxTokens)...)
			continue
		}
		spans = append(spans, sp)
	}

	return emitSpans(content, toks, spans, c.Strategy(), c.cfg.ContextWindow), nil
}

// markedSegments returns the indexes of sentence segments containing a
// decision marker.
func (c *PreferenceSignalChunker) markedSegments(src string, toks []Token, segs []span) []int {
	var marked []int
	for i, seg := range segs {
		text := strings.ToLower(sliceText(src, toks, seg.start, seg.end))
		for _, marker := range decisionMarkers {
			if containsWord(text, marker) {
				marked = append(marked, i)
				break
			}
		}
	}
	return marked
}

// grow expands the span around segment mi with alternating neighbours
// until it reaches the minimum, never crossing segments consumed by an
// earlier span. Overshooting the maximum is repaired by subdivision at
// the call site. Returns the grown span and the index of the last
// segment consumed.
func (c *PreferenceSignalChunker) grow(segs []span, mi, covered int) (span, int) {
	lo, hi := mi, mi
	sp := segs[mi]
	for sp.size() < c.cfg.MinTokens {
		canLeft := lo-1 > covered
		canRight := hi+1 < len(segs)
		if !canLeft && !canRight {
			break
		}
		// Prefer the side that keeps the span balanced around the
		// decision point.
		if canLeft && (!canRight || segs[mi].start-segs[lo-1].start <= segs[hi+1].end-segs[mi].end) {
			lo--
			sp.start = segs[lo].start
		} else {
			hi++
			sp.end = segs[hi].end
		}
	}
	return sp, hi
}

// containsWord reports whether text contains marker as a whole word
// (or phrase).
func containsWord(text, marker string) bool {
	idx := 0
	for {
		j := strings.Index(text[idx:], marker)
		if j < 0 {
			return false
		}
		j += idx
		before := j == 0 || isWordBreak(text[j-1])
		k := j + len(marker)
		after := k >= len(text) || isWordBreak(text[k])
		if before && after {
			return true
		}
		idx = j + len(marker)
	}
}

func isWordBreak(b byte) bool {
	return !(b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9')
}
