package chunking

import (
	"github.com/weave-nn/weave/internal/core/domain"
)

// Chunker segments content into ordered, unfinalised chunks: no ids,
// indexes relative to this call. The Enricher finalises them.
type Chunker interface {
	// Strategy identifies the chunker in the closed strategy set.
	Strategy() domain.Strategy

	// Chunk segments content. Empty content yields no chunks and no
	// error. Token counts honour the chunker's configured range except
	// for the documented edge cases.
	Chunk(content string) ([]domain.Chunk, error)
}

// emitSpans materialises token spans as chunks: exact source substrings,
// token counts, context windows, ordinal indexes.
func emitSpans(src string, toks []Token, spans []span, strategy domain.Strategy, contextWindow int) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(spans))
	for i, sp := range spans {
		if sp.size() <= 0 {
			continue
		}
		before, after := ExtractContext(src, toks, sp.start, sp.end, contextWindow)
		chunks = append(chunks, domain.Chunk{
			Index:         i,
			Content:       src[toks[sp.start].Start:toks[sp.end-1].End],
			Strategy:      strategy,
			TokenCount:    sp.size(),
			ContextBefore: before,
			ContextAfter:  after,
		})
	}
	return chunks
}

// tokenIndexAt maps a byte offset to the index of the first token
// starting at or after it.
func tokenIndexAt(toks []Token, off int) int {
	lo, hi := 0, len(toks)
	for lo < hi {
		mid := (lo + hi) / 2
		if toks[mid].Start < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// segmentsFromBoundaries converts boundary byte offsets into contiguous
// token spans covering all n tokens.
func segmentsFromBoundaries(toks []Token, boundaries []int) []span {
	if len(toks) == 0 {
		return nil
	}
	var segs []span
	prev := 0
	for _, off := range boundaries {
		idx := tokenIndexAt(toks, off)
		if idx > prev && idx < len(toks) {
			segs = append(segs, span{prev, idx})
			prev = idx
		}
	}
	segs = append(segs, span{prev, len(toks)})
	return segs
}

// sliceText returns the source text covered by the token range
// [start, end), or "" for an empty range.
func sliceText(src string, toks []Token, start, end int) string {
	if start >= end {
		return ""
	}
	return src[toks[start].Start:toks[end-1].End]
}
