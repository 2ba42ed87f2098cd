// Package randutil builds the module's rand/v2 generators. Everything
// that shuffles or samples takes a *rand.Rand rather than touching
// global state: deterministic seeds script tests, wall-clock seeds
// feed live tables.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

// splitmix64 finalizer constants; the golden ratio stretches one seed
// word into the two the PCG wants.
const (
	golden = 0x9e3779b97f4a7c15
	mixA   = 0xbf58476d1ce4e5b9
	mixB   = 0x94d049bb133111eb
)

// New derives a PCG from a single int64 seed. Equal seeds always
// yield equal sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(finalize(u), finalize(u+golden)))
}

// NewTimeSeeded seeds from the wall clock, for shuffles that must not
// repeat between runs.
func NewTimeSeeded() *rand.Rand {
	return New(time.Now().UnixNano())
}

func finalize(x uint64) uint64 {
	x ^= x >> 30
	x *= mixA
	x ^= x >> 27
	x *= mixB
	x ^= x >> 31
	return x
}
