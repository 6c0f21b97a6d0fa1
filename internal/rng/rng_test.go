package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrypto_Intn(t *testing.T) {
	c := Crypto{}
	found := make(map[int]int)
	for i := 0; i < 2000; i++ {
		n := c.Intn(6)
		assert.True(t, n >= 0 && n < 6)
		found[n]++
	}

	// every face should show up; the odds of one missing are negligible
	assert.Len(t, found, 6)
}

func TestNewSeeded(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Intn(52), b.Intn(52))
	}
}
