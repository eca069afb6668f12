package domain

import "time"

// Chunk is an immutable unit of retrievable content produced by a
// chunker. Chunks are append-only: re-indexing a source produces new
// chunk ids rather than mutating existing rows, so embedding lineage is
// never silently invalidated.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// SourceID identifies the originating document or experience.
	SourceID string

	// Index is the zero-based ordinal position within the source.
	// (SourceID, Index) is unique for a given source generation.
	Index int

	// Content is the chunk text.
	Content string

	// ContentHash is the deterministic SHA-256 hex digest of Content.
	// Used for embedding-cache lookups and change detection.
	ContentHash string

	// Strategy records which chunker produced this chunk.
	Strategy Strategy

	// TokenCount is the approximate token length of Content. It falls
	// within the producing strategy's target range except for the
	// single-chunk-short-input case.
	TokenCount int

	// ContextBefore and ContextAfter are optional bounded windows of
	// surrounding source text, captured at chunking time.
	ContextBefore string
	ContextAfter  string

	// Metadata carries temporal, hierarchical and relational links.
	Metadata ChunkMetadata
}

// ChunkMetadata links a chunk to its neighbours and relatives.
// Serialised as JSON in durable storage.
type ChunkMetadata struct {
	// PrevID and NextID form a strict linked list in emission order.
	PrevID string `json:"prevId,omitempty"`
	NextID string `json:"nextId,omitempty"`

	// ParentID and ChildIDs express hierarchical derivation.
	ParentID string   `json:"parentId,omitempty"`
	ChildIDs []string `json:"childIds,omitempty"`

	// RelatedIDs reference semantically related chunks.
	RelatedIDs []string `json:"relatedIds,omitempty"`

	// CreatedAt and UpdatedAt are enrichment timestamps.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MemoryStats summarises the persisted and indexed state of the engine.
type MemoryStats struct {
	// Sources is the number of distinct source ids with stored chunks.
	Sources int

	// Chunks is the total number of stored chunks.
	Chunks int

	// Embeddings is the total number of stored embeddings.
	Embeddings int

	// IndexSize is the number of entries in the in-memory vector index.
	IndexSize int

	// ModelVersion is the embedding model currently configured.
	ModelVersion string

	// Dimensions is the configured vector dimension.
	Dimensions int
}
