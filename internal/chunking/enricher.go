package chunking

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/weave-nn/weave/internal/core/domain"
)

// idLength is the rendered length of a chunk id: 12 base64url
// characters of the derivation hash.
const idLength = 12

// Enricher finalises chunker output: deterministic ids, prev/next
// links in emission order, content hashes and timestamps. It never
// mutates its input.
//
// Ids derive from (seed, sourceID, index, contentHash), so enrichment
// is idempotent under a pinned seed: re-running it over the same chunks
// reproduces the same ids. The default seed is random, giving every
// indexing run fresh ids (chunks are append-only).
type Enricher struct {
	seed string
	now  func() time.Time
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithSeed pins the id-generation seed.
func WithSeed(seed string) EnricherOption {
	return func(e *Enricher) {
		if seed != "" {
			e.seed = seed
		}
	}
}

// WithClock pins the timestamp source.
func WithClock(now func() time.Time) EnricherOption {
	return func(e *Enricher) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEnricher creates an enricher. Without options it uses a random
// seed and the wall clock.
func NewEnricher(opts ...EnricherOption) *Enricher {
	e := &Enricher{
		seed: uuid.NewString(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns a finalised copy of chunks: content hashes, ids,
// prev/next links, timestamps. Chunks must already carry SourceID and
// their final Index. Preference-signal chunks of one batch additionally
// reference each other as related decision points.
func (e *Enricher) Enrich(chunks []domain.Chunk) []domain.Chunk {
	if len(chunks) == 0 {
		return nil
	}

	now := e.now().UTC()
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)

	for i := range out {
		if out[i].ContentHash == "" {
			out[i].ContentHash = HashContent(out[i].Content)
		}
		out[i].ID = e.chunkID(out[i].SourceID, out[i].Index, out[i].ContentHash)
		if out[i].Metadata.CreatedAt.IsZero() {
			out[i].Metadata.CreatedAt = now
		}
		out[i].Metadata.UpdatedAt = now
	}

	for i := range out {
		if i > 0 {
			out[i].Metadata.PrevID = out[i-1].ID
		} else {
			out[i].Metadata.PrevID = ""
		}
		if i < len(out)-1 {
			out[i].Metadata.NextID = out[i+1].ID
		} else {
			out[i].Metadata.NextID = ""
		}
	}

	e.linkRelated(out)
	return out
}

// linkRelated cross-references preference-signal chunks of one batch:
// decision points extracted from the same source content relate to
// each other.
func (e *Enricher) linkRelated(chunks []domain.Chunk) {
	var prefs []int
	for i := range chunks {
		if chunks[i].Strategy == domain.StrategyPreferenceSignal {
			prefs = append(prefs, i)
		}
	}
	if len(prefs) < 2 {
		return
	}
	for _, i := range prefs {
		related := make([]string, 0, len(prefs)-1)
		for _, j := range prefs {
			if j != i {
				related = append(related, chunks[j].ID)
			}
		}
		chunks[i].Metadata.RelatedIDs = related
	}
}

// chunkID derives a short, stable id from the enrichment seed and the
// chunk's identity fields.
func (e *Enricher) chunkID(sourceID string, index int, contentHash string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%s", e.seed, sourceID, index, contentHash)))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:idLength]
}

// HashContent returns the deterministic content hash used for
// embedding-cache lookups and change detection.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
