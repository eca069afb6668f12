package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/weave-nn/weave/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.weave/data/memory.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".weave", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "memory.db")

	// Open database with WAL mode for better concurrency. Foreign keys
	// go in the DSN so every pooled connection enforces them: deleting a
	// chunk must cascade to its embeddings.
	db, err := sql.Open("sqlite",
		dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// EmbeddingStore returns an EmbeddingStore interface backed by this store.
func (s *Store) EmbeddingStore() driven.EmbeddingStore {
	return &embeddingStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveChunks stores a batch of chunks in one transaction.
func (s *chunkStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks
			(id, source_id, idx, content, content_hash, strategy, token_count,
			 context_before, context_after, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			idx = excluded.idx,
			content = excluded.content,
			content_hash = excluded.content_hash,
			strategy = excluded.strategy,
			token_count = excluded.token_count,
			context_before = excluded.context_before,
			context_after = excluded.context_after,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.SourceID, chunk.Index,
			chunk.Content, chunk.ContentHash, string(chunk.Strategy), chunk.TokenCount,
			chunk.ContextBefore, chunk.ContextAfter, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunk retrieves a single chunk by ID.
func (s *chunkStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_id, idx, content, content_hash, strategy, token_count,
		       context_before, context_after, metadata
		FROM chunks WHERE id = ?
	`, id)

	return scanChunkRow(row)
}

// GetChunks retrieves multiple chunks by ID, preserving request order.
// Unknown ids are skipped.
func (s *chunkStore) GetChunks(ctx context.Context, ids []string) ([]domain.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.store.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, source_id, idx, content, content_hash, strategy, token_count,
		       context_before, context_after, metadata
		FROM chunks WHERE id IN (%s)
	`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Chunk, len(ids))
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		byID[chunk.ID] = *chunk
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(byID))
	for _, id := range ids {
		if chunk, ok := byID[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

// ListBySource returns all chunks for a source ordered by index.
func (s *chunkStore) ListBySource(ctx context.Context, sourceID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_id, idx, content, content_hash, strategy, token_count,
		       context_before, context_after, metadata
		FROM chunks WHERE source_id = ?
		ORDER BY idx
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// NextIndex returns the next free ordinal for a source.
func (s *chunkStore) NextIndex(ctx context.Context, sourceID string) (int, error) {
	var next int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(idx) + 1, 0) FROM chunks WHERE source_id = ?
	`, sourceID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("getting next index: %w", err)
	}
	return next, nil
}

// DeleteBySource removes all chunks for a source. Embeddings cascade via
// the foreign key.
func (s *chunkStore) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks WHERE source_id = ?", sourceID)
	if err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// CountChunks returns the total number of stored chunks.
func (s *chunkStore) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// CountSources returns the number of distinct source ids.
func (s *chunkStore) CountSources(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT source_id) FROM chunks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting sources: %w", err)
	}
	return count, nil
}

// ==================== Embedding Store ====================

// embeddingStore implements driven.EmbeddingStore.
type embeddingStore struct {
	store *Store
}

var _ driven.EmbeddingStore = (*embeddingStore)(nil)

// SaveEmbedding stores an embedding, upserting on (chunk_id, model_version).
func (s *embeddingStore) SaveEmbedding(ctx context.Context, emb *domain.Embedding) error {
	if emb.ID == "" || emb.ChunkID == "" {
		return domain.ErrInvalidInput
	}

	vectorBlob := float32SliceToBytes(emb.Vector)

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO embeddings (id, chunk_id, vector, model_version, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id, model_version) DO UPDATE SET
			id = excluded.id,
			vector = excluded.vector,
			created_at = excluded.created_at
	`, emb.ID, emb.ChunkID, vectorBlob, emb.ModelVersion, emb.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}
	return nil
}

// DeleteEmbedding removes an embedding by ID. Unknown ids are a no-op.
func (s *embeddingStore) DeleteEmbedding(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM embeddings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting embedding: %w", err)
	}
	return nil
}

// DeleteBySource removes all embeddings whose chunks belong to a source.
func (s *embeddingStore) DeleteBySource(ctx context.Context, sourceID string) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM embeddings
		WHERE chunk_id IN (SELECT id FROM chunks WHERE source_id = ?)
	`, sourceID)
	if err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	return nil
}

// ScanEntries streams every stored embedding joined with its chunk's
// filter metadata, in insertion order. Used by the startup index rebuild.
func (s *embeddingStore) ScanEntries(ctx context.Context) ([]domain.VectorEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT e.id, e.chunk_id, c.source_id, c.strategy, e.vector
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
		ORDER BY e.rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var entries []domain.VectorEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.VectorEntry
		var strategy string
		var vectorBlob []byte
		if err := rows.Scan(&entry.ID, &entry.ChunkID, &entry.SourceID,
			&strategy, &vectorBlob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		entry.Strategy = domain.Strategy(strategy)
		entry.Vector = bytesToFloat32Slice(vectorBlob)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return entries, nil
}

// CountEmbeddings returns the total number of stored embeddings.
func (s *embeddingStore) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var strategy string
	var metadataJSON string

	if err := rows.Scan(&chunk.ID, &chunk.SourceID, &chunk.Index, &chunk.Content,
		&chunk.ContentHash, &strategy, &chunk.TokenCount,
		&chunk.ContextBefore, &chunk.ContextAfter, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Strategy = domain.Strategy(strategy)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// scanChunkRow scans a chunk from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var strategy string
	var metadataJSON string

	if err := row.Scan(&chunk.ID, &chunk.SourceID, &chunk.Index, &chunk.Content,
		&chunk.ContentHash, &strategy, &chunk.TokenCount,
		&chunk.ContextBefore, &chunk.ContextAfter, &metadataJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Strategy = domain.Strategy(strategy)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}
