// Package config defines the typed engine configuration and its
// validation rules. Values load from a driven.ConfigStore (the TOML
// file store in production, the in-memory store in tests) and are
// validated once, at construction. A bad fusion weight pair is
// rejected here, never at query time.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
)

// Defaults. The fusion weights and join timeout mirror the documented
// query targets: semantic slightly ahead of keyword, total wait bounded
// under 200ms.
const (
	DefaultProvider       = "ollama"
	DefaultModel          = "all-minilm"
	DefaultDimensions     = 384
	DefaultKeywordWeight  = 0.4
	DefaultSemanticWeight = 0.6
	DefaultTopK           = 10
	DefaultJoinTimeout    = 200 * time.Millisecond

	// weightEpsilon absorbs float noise when checking the weight sum.
	weightEpsilon = 1e-9
)

// Config keys as stored in the config file.
const (
	KeyProvider       = "embedding.provider"
	KeyModel          = "embedding.model"
	KeyBaseURL        = "embedding.base_url"
	KeyAPIKey         = "embedding.api_key"
	KeyDimensions     = "embedding.dimensions"
	KeyCacheEntries   = "embedding.cache_entries"
	KeyRateLimit      = "embedding.rate_limit"
	KeyKeywordWeight  = "search.keyword_weight"
	KeySemanticWeight = "search.semantic_weight"
	KeyTopK           = "search.top_k"
	KeyJoinTimeoutMS  = "search.join_timeout_ms"
	KeyDataDir        = "storage.data_dir"
)

// Config carries every tunable of the memory engine.
type Config struct {
	// Provider selects the embedding backend: "ollama", "openai" or
	// "onnx".
	Provider string

	// Model is the embedding model identifier, recorded on every stored
	// embedding as the model version.
	Model string

	// BaseURL overrides the provider endpoint. Empty uses the
	// provider's default.
	BaseURL string

	// APIKey authenticates cloud providers. Unused by local ones.
	APIKey string

	// Dimensions is the embedding vector size. Must match the model.
	Dimensions int

	// CacheEntries bounds the embedding cache. Zero or negative selects
	// the unbounded never-evict cache.
	CacheEntries int64

	// RateLimit throttles provider calls per second. Zero or negative
	// disables throttling.
	RateLimit float64

	// KeywordWeight and SemanticWeight blend the two ranking signals.
	// They must sum to exactly 1.0; configs that do not are rejected,
	// never renormalised.
	KeywordWeight  float64
	SemanticWeight float64

	// TopK is the default result count for searches.
	TopK int

	// JoinTimeout bounds the parallel keyword+semantic fan-out. A
	// sub-query that misses the deadline degrades the response instead
	// of stalling it.
	JoinTimeout time.Duration

	// DataDir holds the SQLite database and the keyword index. Empty
	// selects in-memory storage.
	DataDir string
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Provider:       DefaultProvider,
		Model:          DefaultModel,
		Dimensions:     DefaultDimensions,
		KeywordWeight:  DefaultKeywordWeight,
		SemanticWeight: DefaultSemanticWeight,
		TopK:           DefaultTopK,
		JoinTimeout:    DefaultJoinTimeout,
	}
}

// FromStore builds a Config from a config store, falling back to the
// defaults for unset keys. The result is not yet validated; callers run
// Validate once after loading.
func FromStore(store driven.ConfigStore) Config {
	cfg := Default()

	if v := store.GetString(KeyProvider); v != "" {
		cfg.Provider = v
	}
	if v := store.GetString(KeyModel); v != "" {
		cfg.Model = v
	}
	cfg.BaseURL = store.GetString(KeyBaseURL)
	cfg.APIKey = store.GetString(KeyAPIKey)
	if v := store.GetInt(KeyDimensions); v > 0 {
		cfg.Dimensions = v
	}
	if v := store.GetInt(KeyCacheEntries); v > 0 {
		cfg.CacheEntries = int64(v)
	}
	if v := store.GetFloat64(KeyRateLimit); v > 0 {
		cfg.RateLimit = v
	}
	if _, ok := store.Get(KeyKeywordWeight); ok {
		cfg.KeywordWeight = store.GetFloat64(KeyKeywordWeight)
	}
	if _, ok := store.Get(KeySemanticWeight); ok {
		cfg.SemanticWeight = store.GetFloat64(KeySemanticWeight)
	}
	if v := store.GetInt(KeyTopK); v > 0 {
		cfg.TopK = v
	}
	if v := store.GetInt(KeyJoinTimeoutMS); v > 0 {
		cfg.JoinTimeout = time.Duration(v) * time.Millisecond
	}
	cfg.DataDir = store.GetString(KeyDataDir)

	return cfg
}

// Validate rejects unusable configurations. Called once at startup;
// queries never re-validate.
func (c Config) Validate() error {
	switch c.Provider {
	case "ollama", "openai", "onnx":
	default:
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: embedding model is required", domain.ErrInvalidInput)
	}
	if c.Dimensions <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidInput, c.Dimensions)
	}
	if c.KeywordWeight < 0 || c.SemanticWeight < 0 {
		return fmt.Errorf("%w: fusion weights must be non-negative", domain.ErrInvalidInput)
	}
	if sum := c.KeywordWeight + c.SemanticWeight; math.Abs(sum-1.0) > weightEpsilon {
		return fmt.Errorf("%w: fusion weights must sum to 1.0, got %.3f", domain.ErrInvalidInput, sum)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, c.TopK)
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("%w: join timeout must be positive, got %s", domain.ErrInvalidInput, c.JoinTimeout)
	}
	return nil
}
