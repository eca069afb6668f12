package domain

import "time"

// Embedding is the durable vector representation of one chunk.
// At most one embedding exists per (ChunkID, ModelVersion); re-embedding
// under a new model version inserts a new row rather than overwriting.
type Embedding struct {
	// ID is the unique identifier for the embedding.
	ID string

	// ChunkID links to the chunk this vector represents.
	ChunkID string

	// Vector is the fixed-length embedding. The dimension is set by the
	// configured model and identical for every row.
	Vector []float32

	// ModelVersion identifies the model that produced Vector.
	ModelVersion string

	// CreatedAt is when the embedding was generated.
	CreatedAt time.Time
}

// VectorEntry is the in-memory index's view of an embedding: the vector
// plus the minimal metadata needed for filtering and result assembly.
// Entries are rebuilt from durable storage at startup and kept in step
// with it through the single store/delete write path.
type VectorEntry struct {
	// ID is the embedding id.
	ID string

	// ChunkID is the chunk the vector represents; it is the join key
	// between the keyword and semantic ranking signals.
	ChunkID string

	// SourceID and Strategy support filtering without a storage hit.
	SourceID string
	Strategy Strategy

	// Vector is the raw, unnormalised embedding.
	Vector []float32
}
