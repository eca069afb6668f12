// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - ChunkStore: chunk persistence, ordered by (source_id, idx)
//   - EmbeddingStore: embedding persistence backing the in-memory vector index
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Embedding vectors are stored as little-endian float32
// blobs; chunk metadata is stored as JSON.
//
// # Data Location
//
// By default, the database is stored at ~/.weave/data/memory.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
