package driving

import (
	"context"

	"github.com/weave-nn/weave/internal/core/domain"
)

// SearchService provides hybrid search capabilities to external actors.
type SearchService interface {
	// Search performs hybrid keyword + semantic search over all indexed
	// chunks. The response carries a degraded flag when one ranking
	// signal was unavailable.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}
