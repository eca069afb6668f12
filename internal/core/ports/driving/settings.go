package driving

// Setting is one engine configuration entry with its effective value
// (the stored value, or the documented default when unset).
type Setting struct {
	Key   string
	Value string
}

// SettingsService manages the engine configuration. Writes are
// validated against the full resulting configuration before they
// persist; an edit that would leave the engine unusable (fusion
// weights not summing to 1.0, zero dimensions) is rejected here.
type SettingsService interface {
	// List returns every known setting with its effective value, in a
	// stable order.
	List() []Setting

	// Get returns the effective value for a known key.
	Get(key string) (string, error)

	// Set validates and persists one setting.
	Set(key, value string) error

	// SetWeights persists both fusion weights as one atomic change.
	// Moving the split one key at a time would pass through an invalid
	// intermediate pair, so the pair is written together or not at all.
	SetWeights(keyword, semantic float64) error
}
