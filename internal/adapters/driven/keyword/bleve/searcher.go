// Package bleve implements keyword search over chunks using a Bleve
// full-text index. Scores are raw Bleve tf-idf values; the hybrid
// search layer normalises them before fusing with semantic scores.
package bleve

import (
	"context"
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// deleteBatchSize bounds how many doc ids a single DeleteSource pass
// collects before flushing a batch.
const deleteBatchSize = 1000

// Ensure Searcher implements the interface.
var _ driven.KeywordSearcher = (*Searcher)(nil)

// Searcher is a Bleve-backed implementation of driven.KeywordSearcher.
type Searcher struct {
	index bleve.Index
}

// chunkDoc is the indexed projection of a chunk: the searchable text
// plus the source id needed for bulk deletion.
type chunkDoc struct {
	Content  string `json:"content"`
	SourceID string `json:"source_id"`
}

// New opens the index at path, creating it if it does not exist.
func New(path string) (*Searcher, error) {
	index, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		index, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening keyword index: %w", err)
	}
	return &Searcher{index: index}, nil
}

// NewMemOnly creates an ephemeral in-memory index. Used in tests and
// when rebuilding from durable chunk storage is cheap.
func NewMemOnly() (*Searcher, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("creating keyword index: %w", err)
	}
	return &Searcher{index: index}, nil
}

// buildMapping defines the index schema: chunk content is analysed with
// English stemming, the source id is kept verbatim for exact matches.
func buildMapping() mapping.IndexMapping {
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = en.AnalyzerName

	sourceField := bleve.NewTextFieldMapping()
	sourceField.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("content", contentField)
	docMapping.AddFieldMappingsAt("source_id", sourceField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Index adds or updates a chunk in the search index.
func (s *Searcher) Index(_ context.Context, chunk domain.Chunk) error {
	if chunk.ID == "" {
		return domain.ErrInvalidInput
	}
	doc := chunkDoc{
		Content:  chunk.Content,
		SourceID: chunk.SourceID,
	}
	if err := s.index.Index(chunk.ID, doc); err != nil {
		return fmt.Errorf("indexing chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// Delete removes a chunk from the search index. Unknown ids are a no-op.
func (s *Searcher) Delete(_ context.Context, chunkID string) error {
	if err := s.index.Delete(chunkID); err != nil {
		return fmt.Errorf("deleting chunk %s: %w", chunkID, err)
	}
	return nil
}

// DeleteSource removes every chunk belonging to a source by paging
// through term matches on the verbatim source_id field.
func (s *Searcher) DeleteSource(ctx context.Context, sourceID string) error {
	query := bleve.NewTermQuery(sourceID)
	query.SetField("source_id")

	for {
		req := bleve.NewSearchRequestOptions(query, deleteBatchSize, 0, false)
		result, err := s.index.SearchInContext(ctx, req)
		if err != nil {
			return fmt.Errorf("finding chunks for source %s: %w", sourceID, err)
		}
		if len(result.Hits) == 0 {
			return nil
		}

		batch := s.index.NewBatch()
		for _, hit := range result.Hits {
			batch.Delete(hit.ID)
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("deleting chunks for source %s: %w", sourceID, err)
		}
	}
}

// Search performs a keyword search over chunk content and returns
// matching chunk ids with raw Bleve scores, best first.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]driven.KeywordHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	match := bleve.NewMatchQuery(query)
	match.SetField("content")

	req := bleve.NewSearchRequestOptions(match, limit, 0, false)
	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching keyword index: %w", err)
	}

	hits := make([]driven.KeywordHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, driven.KeywordHit{
			ChunkID: hit.ID,
			Score:   hit.Score,
		})
	}
	return hits, nil
}

// Close releases the index.
func (s *Searcher) Close() error {
	return s.index.Close()
}
