package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
	"github.com/weave-nn/weave/internal/logger"
)

// Store is a write-through vector index: durable embedding rows plus an
// in-memory mirror scanned at search time.
//
// A single RWMutex guards the mirror: mutations take the write lock,
// searches share the read lock. Entries keep their first-insertion
// position across upserts, which makes similarity ties deterministic.
type Store struct {
	durable      driven.EmbeddingStore
	modelVersion string
	dims         int
	now          func() time.Time

	mu      sync.RWMutex
	entries []domain.VectorEntry
	byChunk map[string]int // chunk id → position in entries
	byID    map[string]int // embedding id → position in entries
}

var _ driven.VectorIndex = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock pins the timestamp source for durable writes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a vector store over the durable embedding rows. The
// in-memory index starts empty; call LoadIndex to populate it from
// storage. dims is the embedding size of the running model; entries
// of any other size never enter the index.
func New(durable driven.EmbeddingStore, modelVersion string, dims int, opts ...Option) *Store {
	s := &Store{
		durable:      durable,
		modelVersion: modelVersion,
		dims:         dims,
		now:          time.Now,
		byChunk:      make(map[string]int),
		byID:         make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store upserts an entry: the durable row first, then the in-memory
// mirror under the write lock. Re-storing a chunk overwrites its vector
// in place and keeps its original insertion position.
func (s *Store) Store(ctx context.Context, entry domain.VectorEntry) error {
	if entry.ID == "" || entry.ChunkID == "" {
		return fmt.Errorf("%w: vector entry needs id and chunk id", domain.ErrInvalidInput)
	}
	if len(entry.Vector) != s.dims {
		return fmt.Errorf("%w: got %d dimensions, index holds %d", domain.ErrDimensionMismatch, len(entry.Vector), s.dims)
	}

	emb := &domain.Embedding{
		ID:           entry.ID,
		ChunkID:      entry.ChunkID,
		Vector:       entry.Vector,
		ModelVersion: s.modelVersion,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.durable.SaveEmbedding(ctx, emb); err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pos, ok := s.byChunk[entry.ChunkID]; ok {
		delete(s.byID, s.entries[pos].ID)
		s.entries[pos] = entry
		s.byID[entry.ID] = pos
		return nil
	}
	s.entries = append(s.entries, entry)
	pos := len(s.entries) - 1
	s.byChunk[entry.ChunkID] = pos
	s.byID[entry.ID] = pos
	return nil
}

// Delete removes an entry by embedding id from both layers. Deleting an
// unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.durable.DeleteEmbedding(ctx, id); err != nil {
		return fmt.Errorf("delete embedding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.byID[id]
	if !ok {
		return nil
	}
	s.removeAt(pos)
	return nil
}

// DeleteSource removes every entry belonging to a source from both
// layers. Unknown sources are a no-op.
func (s *Store) DeleteSource(ctx context.Context, sourceID string) error {
	if err := s.durable.DeleteBySource(ctx, sourceID); err != nil {
		return fmt.Errorf("delete embeddings by source: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.SourceID != sourceID {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
	s.reindex()
	return nil
}

// Search scans the index and returns the k most similar entries by
// descending cosine similarity, ties broken by insertion order. k
// larger than the index returns everything; k of zero or less returns
// nothing. Vectors are normalised here, at comparison time; entries
// are stored exactly as encoded.
func (s *Store) Search(ctx context.Context, query []float32, k int, filter driven.VectorFilter) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index holds %d", domain.ErrDimensionMismatch, len(query), s.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	sources := toSet(filter.SourceIDs)
	strategies := make(map[domain.Strategy]struct{}, len(filter.Strategies))
	for _, strat := range filter.Strategies {
		strategies[strat] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(s.entries))
	for _, entry := range s.entries {
		if len(sources) > 0 {
			if _, ok := sources[entry.SourceID]; !ok {
				continue
			}
		}
		if len(strategies) > 0 {
			if _, ok := strategies[entry.Strategy]; !ok {
				continue
			}
		}
		hits = append(hits, driven.VectorHit{
			EmbeddingID: entry.ID,
			ChunkID:     entry.ChunkID,
			SourceID:    entry.SourceID,
			Strategy:    entry.Strategy,
			Similarity:  cosine(query, entry.Vector),
		})
	}

	// Stable sort: equal similarities keep insertion order.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// LoadIndex rebuilds the in-memory index from the durable rows. It
// holds the write lock for the whole rebuild, so no search observes a
// partially built index. Rows that do not fit the running model, such
// as wrong dimensions, missing ids, or stale model versions, are logged
// as an index inconsistency and dropped; the rebuild itself is the
// repair.
func (s *Store) LoadIndex(ctx context.Context) error {
	scanned, err := s.durable.ScanEntries(ctx)
	if err != nil {
		return fmt.Errorf("scan embeddings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:0]
	s.byChunk = make(map[string]int, len(scanned))
	s.byID = make(map[string]int, len(scanned))

	var reason string
	for _, entry := range scanned {
		switch {
		case entry.ID == "" || entry.ChunkID == "":
			reason = "rows with missing ids"
			continue
		case len(entry.Vector) != s.dims:
			reason = fmt.Sprintf("rows with wrong dimensions (want %d)", s.dims)
			continue
		}
		if pos, ok := s.byChunk[entry.ChunkID]; ok {
			// Later row wins: it is the most recent write for the chunk.
			delete(s.byID, s.entries[pos].ID)
			s.entries[pos] = entry
			s.byID[entry.ID] = pos
			reason = "duplicate chunk rows"
			continue
		}
		s.entries = append(s.entries, entry)
		pos := len(s.entries) - 1
		s.byChunk[entry.ChunkID] = pos
		s.byID[entry.ID] = pos
	}

	if loaded := len(s.entries); loaded != len(scanned) {
		ierr := &domain.IndexInconsistencyError{
			Scanned: len(scanned),
			Loaded:  loaded,
			Reason:  reason,
		}
		logger.Warn("%v: repaired during rebuild", ierr)
	}
	logger.Debug("vector index loaded: %d entries", len(s.entries))
	return nil
}

// Size returns the number of entries in the in-memory index.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close releases the in-memory index. The durable store is owned and
// closed by the caller.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byChunk = map[string]int{}
	s.byID = map[string]int{}
	return nil
}

// removeAt splices out the entry at pos. Callers hold the write lock.
func (s *Store) removeAt(pos int) {
	s.entries = append(s.entries[:pos], s.entries[pos+1:]...)
	s.reindex()
}

// reindex rebuilds both position maps. Callers hold the write lock.
func (s *Store) reindex() {
	s.byChunk = make(map[string]int, len(s.entries))
	s.byID = make(map[string]int, len(s.entries))
	for pos, entry := range s.entries {
		s.byChunk[entry.ChunkID] = pos
		s.byID[entry.ID] = pos
	}
}

// cosine returns the cosine similarity of two equal-length vectors,
// normalising on the fly. Either vector having zero magnitude yields 0.
// A single sqrt over the product keeps colinear vectors of different
// magnitude at exactly the same similarity, so score ties stay exact
// ties and the insertion-order tie-break holds. The result is clamped
// to [-1, 1] to absorb any remaining rounding.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / math.Sqrt(na*nb)
	return math.Max(-1, math.Min(1, sim))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
