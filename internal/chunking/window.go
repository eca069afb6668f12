package chunking

// span is a half-open token index range [start, end).
type span struct {
	start int
	end   int
}

func (s span) size() int {
	return s.end - s.start
}

// balancedSpans covers n tokens with spans whose sizes honour
// [minTokens, maxTokens]. A strict partition into near-equal parts is
// used when one exists; otherwise the spans are windows of exactly
// minTokens with evenly spaced starts, overlapping their neighbours.
// n <= maxTokens yields a single span even below the minimum (the
// short-input rule).
func balancedSpans(n, minTokens, maxTokens int) []span {
	if n <= 0 {
		return nil
	}
	if n <= maxTokens {
		return []span{{0, n}}
	}

	parts := (n + maxTokens - 1) / maxTokens
	if n >= parts*minTokens {
		// Near-equal partition: the first n%parts spans take one extra
		// token. Every size lands in [n/parts, n/parts+1] ⊆ [min, max].
		spans := make([]span, 0, parts)
		base := n / parts
		extra := n % parts
		start := 0
		for i := 0; i < parts; i++ {
			size := base
			if i < extra {
				size++
			}
			spans = append(spans, span{start, start + size})
			start += size
		}
		return spans
	}

	// No partition honours the minimum (e.g. 500 tokens against
	// [307,461]): emit windows of exactly minTokens whose starts spread
	// evenly, trading overlap for range compliance.
	spans := make([]span, 0, parts)
	for i := 0; i < parts; i++ {
		start := i * (n - minTokens) / (parts - 1)
		spans = append(spans, span{start, start + minTokens})
	}
	return spans
}

// subdivide re-expresses s as balanced spans in absolute token indexes.
func subdivide(s span, minTokens, maxTokens int) []span {
	parts := balancedSpans(s.size(), minTokens, maxTokens)
	for i := range parts {
		parts[i].start += s.start
		parts[i].end += s.start
	}
	return parts
}
