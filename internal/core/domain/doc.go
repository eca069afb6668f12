// Package domain defines the core business entities for Weave.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: An immutable, retrievable unit of segmented content
//   - Embedding: The stored vector representation of a chunk
//   - VectorEntry: The in-memory index view of an embedding
//   - SearchResult / SearchResponse: Ranked hybrid search output
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
