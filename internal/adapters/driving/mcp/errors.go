// Package mcp provides an MCP (Model Context Protocol) server adapter for
// Weave. It lets AI assistants index content into and search the local
// semantic memory.
package mcp

import "errors"

// ErrMissingMemoryService is returned when the memory service is not provided.
var ErrMissingMemoryService = errors.New("mcp: memory service is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
