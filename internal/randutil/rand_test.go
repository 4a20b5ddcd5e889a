package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestScripted(t *testing.T) {
	s := NewScripted(0.05, 0.5, 0.95)

	assert.Equal(t, 0.05, s.Float64())
	assert.Equal(t, 1, s.IntN(2))
	assert.Equal(t, 9, s.IntN(10))
	// cycles back to the start
	assert.Equal(t, 0.05, s.Float64())
	assert.Equal(t, 4, s.Draws())
}

func TestScriptedClampsOutOfRange(t *testing.T) {
	s := NewScripted(-1, 1, 2)
	assert.Equal(t, 0.0, s.Float64())
	assert.Less(t, s.Float64(), 1.0)
	assert.Equal(t, 4, s.IntN(5))
}

func TestScriptedIntNPanicsOnInvalidBound(t *testing.T) {
	assert.Panics(t, func() { NewScripted(0.5).IntN(0) })
}
