package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAppliesDefaultWhenUnset(t *testing.T) {
	o := Options{}.Normalize()
	assert.Equal(t, defaultConcurrency, o.MaxConcurrentFiles)
}

func TestNormalizeNegativeFallsBackToDefault(t *testing.T) {
	o := Options{MaxConcurrentFiles: -3}.Normalize()
	assert.Equal(t, defaultConcurrency, o.MaxConcurrentFiles)
}

func TestNormalizeClampsAboveMax(t *testing.T) {
	o := Options{MaxConcurrentFiles: 99}.Normalize()
	assert.Equal(t, maxConcurrency, o.MaxConcurrentFiles)
}

func TestNormalizeLeavesValidValue(t *testing.T) {
	o := Options{MaxConcurrentFiles: 3}.Normalize()
	assert.Equal(t, 3, o.MaxConcurrentFiles)
}
