// Package randutil centralises how the game obtains randomness so that every
// consumer (deck shuffles, opponent decisions, showdown coin flips) can be
// driven by a seeded or scripted source.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Source is the subset of *rand.Rand the game depends on.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper derives the two 64-bit seeds required by rand/v2 so that all
// call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns a seed derived from the wall clock, for callers that were not
// given one explicitly.
func Seed() int64 {
	return time.Now().UnixNano()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Scripted replays a fixed sequence of floats in [0,1), cycling when it runs
// out. IntN draws from the same sequence, so a script fully determines every
// consumer that shares the source.
type Scripted struct {
	values []float64
	next   int
}

// NewScripted creates a scripted source. Values outside [0,1) are clamped.
func NewScripted(values ...float64) *Scripted {
	if len(values) == 0 {
		values = []float64{0}
	}
	clamped := make([]float64, len(values))
	for i, v := range values {
		switch {
		case v < 0:
			v = 0
		case v >= 1:
			v = 0.999999
		}
		clamped[i] = v
	}
	return &Scripted{values: clamped}
}

// Float64 returns the next scripted value.
func (s *Scripted) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// IntN maps the next scripted value onto [0,n).
func (s *Scripted) IntN(n int) int {
	if n <= 0 {
		panic("randutil: invalid argument to IntN")
	}
	return int(s.Float64() * float64(n))
}

// Draws reports how many values have been consumed.
func (s *Scripted) Draws() int {
	return s.next
}
