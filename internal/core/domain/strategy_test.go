package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStrategy_Valid tests recognition of the closed strategy set
func TestStrategy_Valid(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		want     bool
	}{
		{"event-based", StrategyEventBased, true},
		{"semantic-boundary", StrategySemanticBoundary, true},
		{"preference-signal", StrategyPreferenceSignal, true},
		{"step-based", StrategyStepBased, true},
		{"empty", Strategy(""), false},
		{"unknown", Strategy("recursive"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.strategy.Valid())
		})
	}
}

// TestStrategies tests that the full set is returned in stable order
func TestStrategies(t *testing.T) {
	all := Strategies()

	assert.Len(t, all, 4)
	assert.Equal(t, StrategyEventBased, all[0])
	for _, s := range all {
		assert.True(t, s.Valid())
		assert.Equal(t, string(s), s.String())
	}
}
