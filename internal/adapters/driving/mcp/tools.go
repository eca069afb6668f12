package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/weave-nn/weave/internal/core/domain"
)

// IndexInput is the input schema for the memory_index tool.
type IndexInput struct {
	Content        string `json:"content" jsonschema:"the raw content to chunk and index"`
	SourceID       string `json:"source_id" jsonschema:"identifier of the originating document or experience"`
	Classification string `json:"classification,omitempty" jsonschema:"content classification hint: conversation, document, preference or procedure"`
}

// IndexOutput is the output schema for the memory_index tool.
type IndexOutput struct {
	ChunkIDs []string `json:"chunk_ids"`
	Count    int      `json:"count"`
	Strategy string   `json:"strategy,omitempty"`
}

// SearchInput is the input schema for the memory_search tool.
type SearchInput struct {
	Query                 string   `json:"query" jsonschema:"the search query"`
	Limit                 int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	SourceIDs             []string `json:"source_ids,omitempty" jsonschema:"restrict results to these source ids"`
	AllowDuplicateSources bool     `json:"allow_duplicate_sources,omitempty" jsonschema:"return multiple results from the same source"`
}

// SearchOutput is the output schema for the memory_search tool.
type SearchOutput struct {
	Results        []SearchResultOutput `json:"results"`
	Count          int                  `json:"count"`
	Degraded       bool                 `json:"degraded"`
	DegradedReason string               `json:"degraded_reason,omitempty"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID  string  `json:"chunk_id"`
	SourceID string  `json:"source_id"`
	Strategy string  `json:"strategy"`
	Score    float64 `json:"score"`
	Signal   string  `json:"signal"`
	Content  string  `json:"content"`
}

// DeleteSourceInput is the input schema for the memory_delete_source tool.
type DeleteSourceInput struct {
	SourceID string `json:"source_id" jsonschema:"identifier of the source whose chunks should be removed"`
}

// DeleteSourceOutput is the output schema for the memory_delete_source tool.
type DeleteSourceOutput struct {
	SourceID string `json:"source_id"`
	Deleted  bool   `json:"deleted"`
}

// StatusInput is the (empty) input schema for the memory_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the memory_status tool.
type StatusOutput struct {
	Sources      int    `json:"sources"`
	Chunks       int    `json:"chunks"`
	Embeddings   int    `json:"embeddings"`
	IndexSize    int    `json:"index_size"`
	ModelVersion string `json:"model_version"`
	Dimensions   int    `json:"dimensions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "memory_index",
		Description: "Chunk, embed and index content into semantic memory",
	}, s.handleIndex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "memory_search",
		Description: "Hybrid keyword + semantic search over indexed memory",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "memory_delete_source",
		Description: "Remove every chunk and embedding belonging to a source",
	}, s.handleDeleteSource)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "memory_status",
		Description: "Report stored and indexed memory counts",
	}, s.handleStatus)
}

// handleIndex handles the memory_index tool invocation.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	chunks, err := s.ports.Memory.ChunkAndIndex(ctx, input.Content, input.SourceID, input.Classification)
	if err != nil {
		return nil, IndexOutput{}, err
	}

	output := IndexOutput{
		ChunkIDs: make([]string, len(chunks)),
		Count:    len(chunks),
	}
	for i := range chunks {
		output.ChunkIDs[i] = chunks[i].ID
	}
	if len(chunks) > 0 {
		output.Strategy = chunks[0].Strategy.String()
	}

	return nil, output, nil
}

// handleSearch handles the memory_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		TopK:                  input.Limit,
		SourceIDs:             input.SourceIDs,
		AllowDuplicateSources: input.AllowDuplicateSources,
	}

	resp, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:        make([]SearchResultOutput, len(resp.Results)),
		Count:          len(resp.Results),
		Degraded:       resp.Degraded,
		DegradedReason: resp.DegradedReason,
	}
	for i := range resp.Results {
		output.Results[i] = SearchResultOutput{
			ChunkID:  resp.Results[i].ID,
			SourceID: resp.Results[i].SourceID,
			Strategy: resp.Results[i].Strategy.String(),
			Score:    resp.Results[i].Score,
			Signal:   string(resp.Results[i].Source),
			Content:  resp.Results[i].Content,
		}
	}

	return nil, output, nil
}

// handleDeleteSource handles the memory_delete_source tool invocation.
func (s *Server) handleDeleteSource(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteSourceInput,
) (*mcp.CallToolResult, DeleteSourceOutput, error) {
	if err := s.ports.Memory.DeleteSource(ctx, input.SourceID); err != nil {
		return nil, DeleteSourceOutput{}, err
	}
	return nil, DeleteSourceOutput{SourceID: input.SourceID, Deleted: true}, nil
}

// handleStatus handles the memory_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	stats, err := s.ports.Memory.Stats(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	return nil, StatusOutput{
		Sources:      stats.Sources,
		Chunks:       stats.Chunks,
		Embeddings:   stats.Embeddings,
		IndexSize:    stats.IndexSize,
		ModelVersion: stats.ModelVersion,
		Dimensions:   stats.Dimensions,
	}, nil
}
