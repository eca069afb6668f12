package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weave-nn/weave/internal/config"
	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
	"github.com/weave-nn/weave/internal/core/ports/driving"
	"github.com/weave-nn/weave/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// scoredChunk holds one ranking signal's view of a chunk before
// hydration: the raw score and, after normalisation, its [0,1] form.
type scoredChunk struct {
	chunkID string
	score   float64
	source  domain.SignalSource
}

// SearchService fuses the lexical and semantic ranking signals into one
// re-ranked result list.
//
// The two sub-queries run concurrently and are joined under a bounded
// timeout; if one signal is unavailable the response is built from the
// other and flagged degraded. Fusion weights are fixed at construction,
// where they are validated; a weight pair that does not sum to 1.0
// never reaches a query.
type SearchService struct {
	chunkStore driven.ChunkStore
	keyword    driven.KeywordSearcher
	vectors    driven.VectorIndex
	embedder   driven.EmbeddingProvider

	keywordWeight  float64
	semanticWeight float64
	topK           int
	joinTimeout    time.Duration
}

// NewSearchService creates a hybrid search service. The keyword
// searcher and the embedding provider are each optional (nil disables
// that signal permanently and every response is degraded), but at
// least one signal must be configured. The config's fusion weights are
// validated here.
func NewSearchService(
	chunkStore driven.ChunkStore,
	keyword driven.KeywordSearcher,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingProvider,
	cfg config.Config,
) (*SearchService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("search config: %w", err)
	}
	if chunkStore == nil {
		return nil, fmt.Errorf("%w: chunk store is required", domain.ErrInvalidInput)
	}
	if keyword == nil && (vectors == nil || embedder == nil) {
		return nil, fmt.Errorf("%w: at least one ranking signal must be configured", domain.ErrInvalidInput)
	}
	return &SearchService{
		chunkStore:     chunkStore,
		keyword:        keyword,
		vectors:        vectors,
		embedder:       embedder,
		keywordWeight:  cfg.KeywordWeight,
		semanticWeight: cfg.SemanticWeight,
		topK:           cfg.TopK,
		joinTimeout:    cfg.JoinTimeout,
	}, nil
}

// Search performs hybrid search across every indexed chunk.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Hybrid Search")
	logger.Debug("query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.SearchResponse{Results: []domain.SearchResult{}}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.topK
	}

	// Fetch extra candidates so the diversity filter and source filter
	// still leave topK results to return.
	internalLimit := topK * 3

	keywordScores, semanticScores, degradedReason, err := s.fanOut(ctx, query, internalLimit, opts)
	if err != nil {
		return nil, err
	}

	normalize(keywordScores)
	normalize(semanticScores)
	fused := s.fuse(keywordScores, semanticScores)

	results, err := s.hydrate(ctx, fused, opts)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	results = diversityFilter(results, opts.AllowDuplicateSources)
	if len(results) > topK {
		results = results[:topK]
	}

	logger.Debug("results: %d (degraded=%t)", len(results), degradedReason != "")
	return &domain.SearchResponse{
		Results:        results,
		Degraded:       degradedReason != "",
		DegradedReason: degradedReason,
	}, nil
}

// fanOut runs the keyword and semantic sub-queries concurrently and
// joins them under the configured timeout. Both sub-queries always run
// to completion or deadline, a join rather than a race. One signal
// failing degrades the response; both failing fails the query.
func (s *SearchService) fanOut(
	ctx context.Context, query string, limit int, opts domain.SearchOptions,
) (keyword, semantic []scoredChunk, degradedReason string, err error) {
	joinCtx, cancel := context.WithTimeout(ctx, s.joinTimeout)
	defer cancel()

	var (
		keywordErr  error
		semanticErr error
	)

	// Sub-query errors are captured, not returned: a failing signal
	// must not cancel its sibling mid-flight.
	g, gctx := errgroup.WithContext(joinCtx)
	g.Go(func() error {
		keyword, keywordErr = s.keywordSearch(gctx, query, limit)
		return nil
	})
	g.Go(func() error {
		semantic, semanticErr = s.semanticSearch(gctx, query, limit, opts)
		return nil
	})
	_ = g.Wait()

	switch {
	case keywordErr != nil && semanticErr != nil:
		return nil, nil, "", fmt.Errorf("hybrid search: keyword=%v, semantic=%w", keywordErr, semanticErr)
	case keywordErr != nil:
		logger.Warn("keyword signal unavailable, semantic-only results: %v", keywordErr)
		return nil, semantic, "keyword search unavailable", nil
	case semanticErr != nil:
		logger.Warn("semantic signal unavailable, keyword-only results: %v", semanticErr)
		return keyword, nil, "semantic search unavailable", nil
	}
	return keyword, semantic, "", nil
}

// keywordSearch queries the lexical engine. Raw engine scores come back
// on an unspecified scale; normalisation happens later.
func (s *SearchService) keywordSearch(ctx context.Context, query string, limit int) ([]scoredChunk, error) {
	if s.keyword == nil {
		return nil, domain.ErrSearchUnavailable
	}

	hits, err := s.keyword.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}
	logger.Debug("keyword signal: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{chunkID: hit.ChunkID, score: hit.Score, source: domain.SignalKeyword}
	}
	return results, nil
}

// semanticSearch embeds the query and scans the vector index. Scores
// are cosine similarities; they go through the same normalisation as
// keyword scores so the two signals fuse on one scale.
func (s *SearchService) semanticSearch(
	ctx context.Context, query string, limit int, opts domain.SearchOptions,
) ([]scoredChunk, error) {
	if s.vectors == nil || s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.vectors.Search(ctx, vec, limit, driven.VectorFilter{SourceIDs: opts.SourceIDs})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	logger.Debug("semantic signal: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{chunkID: hit.ChunkID, score: hit.Similarity, source: domain.SignalSemantic}
	}
	return results, nil
}

// normalize rescales one list's scores to [0,1] in place by min-max
// within that list. A single-result or all-equal list normalises to
// 1.0: within its own signal it is the best evidence available.
func normalize(list []scoredChunk) {
	if len(list) == 0 {
		return
	}

	minScore, maxScore := list[0].score, list[0].score
	for _, sc := range list[1:] {
		if sc.score < minScore {
			minScore = sc.score
		}
		if sc.score > maxScore {
			maxScore = sc.score
		}
	}

	if maxScore == minScore {
		for i := range list {
			list[i].score = 1.0
		}
		return
	}
	for i := range list {
		list[i].score = (list[i].score - minScore) / (maxScore - minScore)
	}
}

// fuse blends the two normalised lists into one ranking. A chunk in
// both lists gets the weighted sum; a chunk in one list gets that
// list's score scaled by its own weight, never zero-filled for the
// missing signal and never boosted to compensate. Output is sorted by
// descending final score with a deterministic id tie-break.
func (s *SearchService) fuse(keyword, semantic []scoredChunk) []scoredChunk {
	type partial struct {
		keyword  float64
		semantic float64
		inKW     bool
		inSem    bool
	}
	parts := make(map[string]*partial, len(keyword)+len(semantic))

	for _, sc := range keyword {
		parts[sc.chunkID] = &partial{keyword: sc.score, inKW: true}
	}
	for _, sc := range semantic {
		if p, ok := parts[sc.chunkID]; ok {
			p.semantic = sc.score
			p.inSem = true
			continue
		}
		parts[sc.chunkID] = &partial{semantic: sc.score, inSem: true}
	}

	fused := make([]scoredChunk, 0, len(parts))
	for id, p := range parts {
		sc := scoredChunk{chunkID: id}
		switch {
		case p.inKW && p.inSem:
			sc.score = s.keywordWeight*p.keyword + s.semanticWeight*p.semantic
			sc.source = domain.SignalFused
		case p.inKW:
			sc.score = s.keywordWeight * p.keyword
			sc.source = domain.SignalKeyword
		default:
			sc.score = s.semanticWeight * p.semantic
			sc.source = domain.SignalSemantic
		}
		fused = append(fused, sc)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		return fused[i].chunkID < fused[j].chunkID
	})
	return fused
}

// hydrate resolves chunk ids into full results. Ids deleted since the
// signals ran are skipped, not errors. The source filter applies here
// for keyword-only hits; the vector index filtered its own.
func (s *SearchService) hydrate(
	ctx context.Context, fused []scoredChunk, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	if len(fused) == 0 {
		return []domain.SearchResult{}, nil
	}

	ids := make([]string, len(fused))
	scoreByID := make(map[string]scoredChunk, len(fused))
	for i, sc := range fused {
		ids[i] = sc.chunkID
		scoreByID[sc.chunkID] = sc
	}

	chunks, err := s.chunkStore.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}

	sources := make(map[string]struct{}, len(opts.SourceIDs))
	for _, id := range opts.SourceIDs {
		sources[id] = struct{}{}
	}

	results := make([]domain.SearchResult, 0, len(chunks))
	for i := range chunks {
		if len(sources) > 0 {
			if _, ok := sources[chunks[i].SourceID]; !ok {
				continue
			}
		}
		sc := scoreByID[chunks[i].ID]
		results = append(results, domain.SearchResult{
			ID:       chunks[i].ID,
			SourceID: chunks[i].SourceID,
			Strategy: chunks[i].Strategy,
			Content:  chunks[i].Content,
			Score:    sc.score,
			Source:   sc.source,
		})
	}
	return results, nil
}

// diversityFilter keeps only the highest-scoring result per source.
// The input is already sorted by descending score, so the first result
// seen for a source is the one kept.
func diversityFilter(results []domain.SearchResult, allowDuplicates bool) []domain.SearchResult {
	if allowDuplicates {
		return results
	}

	seen := make(map[string]struct{}, len(results))
	kept := results[:0]
	for _, r := range results {
		if _, ok := seen[r.SourceID]; ok {
			continue
		}
		seen[r.SourceID] = struct{}{}
		kept = append(kept, r)
	}
	return kept
}
