package chunking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token marks one whitespace-delimited field of the source text by byte
// offsets: text[Start:End]. Offsets let chunkers reconstruct exact
// source spans without re-joining tokens.
type Token struct {
	Start int
	End   int
}

// Tokenize splits text into whitespace-delimited tokens with byte
// offsets. This approximates model tokenisation closely enough for
// range targets while staying deterministic and dependency-free.
func Tokenize(text string) []Token {
	var toks []Token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				toks = append(toks, Token{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, Token{Start: start, End: len(text)})
	}
	return toks
}

// CountTokens returns the deterministic token count of text.
func CountTokens(text string) int {
	return len(Tokenize(text))
}

// FindBoundaries returns ordered byte offsets where a new sentence or
// paragraph may begin: after terminal punctuation followed by space,
// after blank lines, and at list-item line starts. Offsets are strictly
// increasing and exclude 0 and len(text).
func FindBoundaries(text string) []int {
	var offs []int
	last := 0
	runes := []rune(text)
	byteAt := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		byteAt[i] = b
		b += utf8.RuneLen(r)
	}
	byteAt[len(runes)] = b

	add := func(off int) {
		if off > 0 && off < len(text) && off > last {
			offs = append(offs, off)
			last = off
		}
	}

	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			// Sentence end: punctuation run, then whitespace.
			j := i
			for j+1 < len(runes) && (runes[j+1] == '.' || runes[j+1] == '!' || runes[j+1] == '?' || runes[j+1] == ')' || runes[j+1] == '"') {
				j++
			}
			if j+1 < len(runes) && unicode.IsSpace(runes[j+1]) {
				k := j + 1
				for k < len(runes) && unicode.IsSpace(runes[k]) {
					k++
				}
				add(byteAt[k])
				i = j
			}
		case '\n':
			// Paragraph break or list item start.
			k := i + 1
			blanks := 0
			for k < len(runes) && (runes[k] == '\n' || runes[k] == '\r') {
				if runes[k] == '\n' {
					blanks++
				}
				k++
			}
			if blanks >= 1 {
				add(byteAt[k])
				i = k - 1
				continue
			}
			if k < len(runes) && isListStart(runes, k) {
				add(byteAt[k])
			}
		}
	}
	return offs
}

// isListStart reports whether runes[k:] begins a bulleted or numbered
// list item.
func isListStart(runes []rune, k int) bool {
	for k < len(runes) && (runes[k] == ' ' || runes[k] == '\t') {
		k++
	}
	if k >= len(runes) {
		return false
	}
	if runes[k] == '-' || runes[k] == '*' {
		return k+1 < len(runes) && runes[k+1] == ' '
	}
	j := k
	for j < len(runes) && unicode.IsDigit(runes[j]) {
		j++
	}
	if j == k || j-k > 3 {
		return false
	}
	return j < len(runes) && (runes[j] == '.' || runes[j] == ')')
}

// Similarity computes lexical similarity between two texts as the
// Jaccard coefficient over lowercased token sets. Result is in [0,1]:
// identical token sets score 1, disjoint sets score 0. Two empty texts
// are identical (1); one empty text matches nothing (0).
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	inter := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		tok = strings.ToLower(strings.TrimFunc(tok, unicode.IsPunct))
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}
