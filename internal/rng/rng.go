package rng

import (
	"math/rand"
)

// Generator provides a simple random number
// Deck shuffles draw every swap index from a Generator.
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int
}

// NewSeeded returns a deterministic generator
// Live tables use Crypto.
func NewSeeded(seed int64) Generator {
	return rand.New(rand.NewSource(seed)) // nolint:gosec
}
