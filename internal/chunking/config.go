package chunking

// Default token targets per strategy. Semantic-boundary tolerance is
// ±20% around the target; the preference and step ranges come from the
// strategy definitions.
const (
	DefaultSemanticTarget = 384

	DefaultPreferenceMin = 64
	DefaultPreferenceMax = 128

	DefaultStepMin = 256
	DefaultStepMax = 384

	DefaultEventMin = 128
	DefaultEventMax = 512

	// DefaultSimilarityThreshold is the dip level below which adjacent
	// windows are considered a topic shift.
	DefaultSimilarityThreshold = 0.7

	// DefaultContextWindow is the ±N token window captured around each
	// chunk and used when comparing adjacent windows.
	DefaultContextWindow = 32
)

// Config carries the token range and boundary tuning one chunker runs
// with. Chunkers own no state beyond it.
type Config struct {
	// MinTokens and MaxTokens bound emitted chunk sizes, except for the
	// single-chunk-short-input case and never-merged steps.
	MinTokens int
	MaxTokens int

	// SimilarityThreshold is the topic-shift dip level (semantic
	// boundary strategy only).
	SimilarityThreshold float64

	// ContextWindow is the ±N token window for contextual enrichment
	// and adjacent-window comparison.
	ContextWindow int
}

// Option tunes a chunker config.
type Option func(*Config)

// WithTokenRange sets the emitted chunk size bounds.
func WithTokenRange(minTokens, maxTokens int) Option {
	return func(c *Config) {
		if minTokens > 0 {
			c.MinTokens = minTokens
		}
		if maxTokens > 0 {
			c.MaxTokens = maxTokens
		}
	}
}

// WithTargetTokens derives the range from a target with ±20% tolerance.
func WithTargetTokens(target int) Option {
	return func(c *Config) {
		if target > 0 {
			c.MinTokens = target * 4 / 5
			c.MaxTokens = (target*6 + 4) / 5
		}
	}
}

// WithSimilarityThreshold sets the topic-shift dip level.
func WithSimilarityThreshold(threshold float64) Option {
	return func(c *Config) {
		if threshold > 0 && threshold <= 1 {
			c.SimilarityThreshold = threshold
		}
	}
}

// WithContextWindow sets the ±N token context window.
func WithContextWindow(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.ContextWindow = n
		}
	}
}

// newConfig builds a config from defaults and options, repairing an
// inverted range the way an oversized overlap is repaired elsewhere.
func newConfig(minTokens, maxTokens int, opts ...Option) Config {
	cfg := Config{
		MinTokens:           minTokens,
		MaxTokens:           maxTokens,
		SimilarityThreshold: DefaultSimilarityThreshold,
		ContextWindow:       DefaultContextWindow,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MinTokens > cfg.MaxTokens {
		cfg.MinTokens = cfg.MaxTokens * 4 / 5
	}
	return cfg
}
