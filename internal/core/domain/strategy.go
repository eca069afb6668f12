package domain

// Strategy identifies which chunker produced a chunk.
// The set is closed: four strategies, dispatched by tag, never extended
// at runtime.
type Strategy string

const (
	// StrategyEventBased splits on explicit phase-transition markers and
	// preserves temporal ordering between adjacent chunks.
	StrategyEventBased Strategy = "event-based"

	// StrategySemanticBoundary cuts where lexical similarity between
	// adjacent windows dips below a threshold. Default for unknown
	// classifications.
	StrategySemanticBoundary Strategy = "semantic-boundary"

	// StrategyPreferenceSignal extracts decision-point spans with a small
	// surrounding window.
	StrategyPreferenceSignal Strategy = "preference-signal"

	// StrategyStepBased splits on ordinal/step markers; one step is never
	// merged into another chunk.
	StrategyStepBased Strategy = "step-based"
)

// Strategies returns all known strategies in a stable order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyEventBased,
		StrategySemanticBoundary,
		StrategyPreferenceSignal,
		StrategyStepBased,
	}
}

// Valid reports whether s is one of the four known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyEventBased, StrategySemanticBoundary,
		StrategyPreferenceSignal, StrategyStepBased:
		return true
	default:
		return false
	}
}

// String returns the strategy tag as stored and logged.
func (s Strategy) String() string {
	return string(s)
}
