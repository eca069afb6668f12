package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrEmbeddingUnavailable indicates the embedding engine cannot serve.
	// The semantic half of hybrid search degrades without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchUnavailable indicates the keyword engine cannot serve.
	// The lexical half of hybrid search degrades without it.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrModelLoad indicates the embedding model failed to load.
	// Fatal at warmup: the engine cannot serve afterwards.
	ErrModelLoad = errors.New("model load failed")

	// ErrEngineClosed indicates the embedding engine has been shut down.
	ErrEngineClosed = errors.New("embedding engine closed")

	// ErrDimensionMismatch indicates a vector's length does not match the
	// configured model dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// ChunkingError reports a strategy-specific segmentation failure.
// It is fatal for the indexing call that triggered it, not for the
// process; the selector surfaces it rather than silently falling back.
type ChunkingError struct {
	// Strategy is the chunker that failed.
	Strategy Strategy

	// Cause is the underlying failure.
	Cause error
}

func (e *ChunkingError) Error() string {
	return fmt.Sprintf("chunking failed (strategy %s): %v", e.Strategy, e.Cause)
}

func (e *ChunkingError) Unwrap() error {
	return e.Cause
}

// EmbeddingError reports an embedding engine failure. Warmup failures
// wrap ErrModelLoad and are fatal; per-call encode failures are
// recoverable, as the model state is still valid and callers may retry.
type EmbeddingError struct {
	// Op is the failing operation: "warmup", "embed" or "embed_batch".
	Op string

	// Cause is the underlying failure.
	Cause error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s: %v", e.Op, e.Cause)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// IndexInconsistencyError reports a mismatch between durable storage and
// the in-memory vector index, detected while rebuilding the index. The
// rebuild itself is the repair; the error is logged, never ignored.
type IndexInconsistencyError struct {
	// Scanned is the number of durable entries read.
	Scanned int

	// Loaded is the number of entries admitted to the index.
	Loaded int

	// Reason describes the mismatch (dimension drift, duplicate ids).
	Reason string
}

func (e *IndexInconsistencyError) Error() string {
	return fmt.Sprintf("vector index inconsistency: %s (scanned %d, loaded %d)",
		e.Reason, e.Scanned, e.Loaded)
}
