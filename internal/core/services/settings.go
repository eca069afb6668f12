package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/weave-nn/weave/internal/config"
	"github.com/weave-nn/weave/internal/core/domain"
	"github.com/weave-nn/weave/internal/core/ports/driven"
	"github.com/weave-nn/weave/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// settingsKeys lists every known configuration key in display order.
var settingsKeys = []string{
	config.KeyProvider,
	config.KeyModel,
	config.KeyBaseURL,
	config.KeyAPIKey,
	config.KeyDimensions,
	config.KeyCacheEntries,
	config.KeyRateLimit,
	config.KeyKeywordWeight,
	config.KeySemanticWeight,
	config.KeyTopK,
	config.KeyJoinTimeoutMS,
	config.KeyDataDir,
}

// SettingsService exposes the engine configuration as typed key/value
// settings. Every write is validated against the full configuration it
// would produce before it touches the store, so the persisted config is
// always loadable.
type SettingsService struct {
	store driven.ConfigStore
}

// NewSettingsService creates a settings service over a config store.
func NewSettingsService(store driven.ConfigStore) *SettingsService {
	return &SettingsService{store: store}
}

// Engine returns the validated engine configuration currently in
// effect.
func (s *SettingsService) Engine() (config.Config, error) {
	cfg := config.FromStore(s.store)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// List returns every known setting with its effective value.
func (s *SettingsService) List() []driving.Setting {
	cfg := config.FromStore(s.store)
	settings := make([]driving.Setting, len(settingsKeys))
	for i, key := range settingsKeys {
		settings[i] = driving.Setting{Key: key, Value: render(cfg, key)}
	}
	return settings
}

// Get returns the effective value for a known key.
func (s *SettingsService) Get(key string) (string, error) {
	if !knownKey(key) {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrNotFound, key)
	}
	return render(config.FromStore(s.store), key), nil
}

// Set validates and persists one setting. The value is parsed per key
// type, applied to a candidate configuration and validated there; only
// a candidate that passes reaches the store.
func (s *SettingsService) Set(key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrNotFound, key)
	}

	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	candidate := config.FromStore(s.store)
	apply(&candidate, key, typed)
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("setting %s=%q: %w", key, value, err)
	}

	if err := s.store.Set(key, typed); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// SetWeights persists both fusion weights atomically. Each individual
// weight key is also settable through Set, but only when the resulting
// pair already sums to 1.0; moving the split requires this method.
func (s *SettingsService) SetWeights(keyword, semantic float64) error {
	candidate := config.FromStore(s.store)
	candidate.KeywordWeight = keyword
	candidate.SemanticWeight = semantic
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("setting weights %.3f/%.3f: %w", keyword, semantic, err)
	}

	if err := s.store.Set(config.KeyKeywordWeight, keyword); err != nil {
		return fmt.Errorf("save keyword weight: %w", err)
	}
	if err := s.store.Set(config.KeySemanticWeight, semantic); err != nil {
		return fmt.Errorf("save semantic weight: %w", err)
	}
	return nil
}

func knownKey(key string) bool {
	for _, k := range settingsKeys {
		if k == key {
			return true
		}
	}
	return false
}

// parseValue converts the CLI's string form to the key's stored type.
func parseValue(key, value string) (any, error) {
	switch key {
	case config.KeyDimensions, config.KeyCacheEntries, config.KeyTopK, config.KeyJoinTimeoutMS:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		return n, nil
	case config.KeyKeywordWeight, config.KeySemanticWeight, config.KeyRateLimit:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, value)
		}
		return f, nil
	default:
		return value, nil
	}
}

// apply mirrors config.FromStore for a single key.
func apply(cfg *config.Config, key string, value any) {
	switch key {
	case config.KeyProvider:
		cfg.Provider = value.(string)
	case config.KeyModel:
		cfg.Model = value.(string)
	case config.KeyBaseURL:
		cfg.BaseURL = value.(string)
	case config.KeyAPIKey:
		cfg.APIKey = value.(string)
	case config.KeyDimensions:
		cfg.Dimensions = value.(int)
	case config.KeyCacheEntries:
		cfg.CacheEntries = int64(value.(int))
	case config.KeyRateLimit:
		cfg.RateLimit = value.(float64)
	case config.KeyKeywordWeight:
		cfg.KeywordWeight = value.(float64)
	case config.KeySemanticWeight:
		cfg.SemanticWeight = value.(float64)
	case config.KeyTopK:
		cfg.TopK = value.(int)
	case config.KeyJoinTimeoutMS:
		cfg.JoinTimeout = time.Duration(value.(int)) * time.Millisecond
	case config.KeyDataDir:
		cfg.DataDir = value.(string)
	}
}

// render formats a config field for display.
func render(cfg config.Config, key string) string {
	switch key {
	case config.KeyProvider:
		return cfg.Provider
	case config.KeyModel:
		return cfg.Model
	case config.KeyBaseURL:
		return cfg.BaseURL
	case config.KeyAPIKey:
		return cfg.APIKey
	case config.KeyDimensions:
		return strconv.Itoa(cfg.Dimensions)
	case config.KeyCacheEntries:
		return strconv.FormatInt(cfg.CacheEntries, 10)
	case config.KeyRateLimit:
		return strconv.FormatFloat(cfg.RateLimit, 'g', -1, 64)
	case config.KeyKeywordWeight:
		return strconv.FormatFloat(cfg.KeywordWeight, 'g', -1, 64)
	case config.KeySemanticWeight:
		return strconv.FormatFloat(cfg.SemanticWeight, 'g', -1, 64)
	case config.KeyTopK:
		return strconv.Itoa(cfg.TopK)
	case config.KeyJoinTimeoutMS:
		return strconv.FormatInt(int64(cfg.JoinTimeout/time.Millisecond), 10)
	case config.KeyDataDir:
		return cfg.DataDir
	default:
		return ""
	}
}
