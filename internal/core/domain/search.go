package domain

// SignalSource identifies which ranking signal produced a result score.
type SignalSource string

const (
	// SignalKeyword marks a score from the lexical (full-text) engine.
	SignalKeyword SignalSource = "keyword"

	// SignalSemantic marks a score from vector similarity.
	SignalSemantic SignalSource = "semantic"

	// SignalFused marks a score combined from both signals.
	SignalFused SignalSource = "fused"
)

// SearchOptions configures a hybrid search query.
type SearchOptions struct {
	// TopK is the maximum number of results to return.
	TopK int

	// SourceIDs restricts results to the given sources. Empty means all.
	SourceIDs []string

	// AllowDuplicateSources disables the diversity filter that keeps only
	// the highest-scoring result per source.
	AllowDuplicateSources bool
}

// SearchResult is a single ranked hit. Transient: assembled per query,
// never persisted.
type SearchResult struct {
	// ID is the chunk id, the join key between ranking signals.
	ID string

	// SourceID identifies the originating source of the chunk.
	SourceID string

	// Strategy records which chunker produced the underlying chunk.
	Strategy Strategy

	// Content is the chunk text.
	Content string

	// Score is normalised to [0,1] within this response.
	Score float64

	// Source reports which ranking signal(s) produced Score.
	Source SignalSource
}

// SearchResponse is the complete outcome of one hybrid query.
type SearchResponse struct {
	// Results is ordered by descending score after fusion and re-ranking.
	Results []SearchResult

	// Degraded is true when one ranking signal was unavailable and the
	// response was built from the other alone. Degradation is not an
	// error: callers distinguish full from partial results by this flag.
	Degraded bool

	// DegradedReason names the unavailable signal when Degraded is set.
	DegradedReason string
}
