package deck

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHand_HasCard(t *testing.T) {
	hand := CardsFromString("2c,3c,4d")
	assert.True(t, hand.HasCard(CardFromString("3c")))
	assert.False(t, hand.HasCard(CardFromString("3s")))
}

func TestHand_AddCard(t *testing.T) {
	h := make(Hand, 0)
	h.AddCard(CardFromString("14s"))
	h.AddCard(CardFromString("3c"))
	assert.Equal(t, "14s,3c", CardsToString(h))
}

func TestHand_String(t *testing.T) {
	assert.Equal(t, "A♠ 10♥", CardsFromString("14s,10h").String())
	assert.Equal(t, "", Hand{}.String())
}

func TestHand_Sort(t *testing.T) {
	h := CardsFromString("14s,2h,2c,9d")
	sort.Sort(h)
	assert.Equal(t, "2c,2h,9d,14s", CardsToString(h))
}

func TestHand_Clone(t *testing.T) {
	h := CardsFromString("14s,2h")
	c := h.Clone()
	c[0] = CardFromString("3d")
	assert.Equal(t, "14s,2h", CardsToString(h))
}
