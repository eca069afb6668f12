package mcp

import (
	"github.com/weave-nn/weave/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Memory manages the indexing lifecycle.
	Memory driving.MemoryService

	// Search provides hybrid search capabilities.
	Search driving.SearchService

	// Settings exposes the engine configuration.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Memory == nil {
		return ErrMissingMemoryService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Settings is optional; the settings resource degrades to empty.
	return nil
}
