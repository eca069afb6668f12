package chunking

// ExtractContext returns the source text of up to window tokens on each
// side of the token span [first, end). Pure: the result is always an
// exact substring of src. A zero window or a span at the text edge
// yields empty context on that side.
func ExtractContext(src string, toks []Token, first, end, window int) (before, after string) {
	if window <= 0 || len(toks) == 0 {
		return "", ""
	}

	lo := first - window
	if lo < 0 {
		lo = 0
	}
	if lo < first {
		before = src[toks[lo].Start:toks[first-1].End]
	}

	hi := end + window
	if hi > len(toks) {
		hi = len(toks)
	}
	if end < hi {
		after = src[toks[end].Start:toks[hi-1].End]
	}
	return before, after
}
