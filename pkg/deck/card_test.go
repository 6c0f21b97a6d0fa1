package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_constants(t *testing.T) {
	assert.Equal(t, 11, Jack)
	assert.Equal(t, 12, Queen)
	assert.Equal(t, 13, King)
	assert.Equal(t, 14, Ace)
}

func TestCard_String(t *testing.T) {
	a := assert.New(t)
	a.Equal("2♥", Card{Rank: 2, Suit: Hearts}.String())
	a.Equal("J♣", Card{Rank: 11, Suit: Clubs}.String())
	a.Equal("Q♦", Card{Rank: 12, Suit: Diamonds}.String())
	a.Equal("K♠", Card{Rank: 13, Suit: Spades}.String())
	a.Equal("10♠", Card{Rank: 10, Suit: Spades}.String())
	a.Equal("A♠", Card{Rank: 14, Suit: Spades}.String())

	a.PanicsWithValue("unknown suit: bogus", func() {
		_ = Card{Rank: 2, Suit: "bogus"}.String()
	})
}

func TestCard_Valid(t *testing.T) {
	a := assert.New(t)
	a.True(CardFromString("2c").Valid())
	a.True(CardFromString("14h").Valid())
	a.False(Card{Rank: 1, Suit: Clubs}.Valid())
	a.False(Card{Rank: 15, Suit: Clubs}.Valid())
	a.False(Card{Rank: 5, Suit: "stars"}.Valid())
	a.False(Card{}.Valid())
}

func TestCardFromString(t *testing.T) {
	a := assert.New(t)
	a.Equal(Card{Rank: 14, Suit: Clubs}, CardFromString("14c"))
	a.Equal(Card{Rank: 10, Suit: Diamonds}, CardFromString("10D"))
	a.Equal(Card{Rank: 2, Suit: Spades}, CardFromString(" 2s"))

	a.PanicsWithValue("could not parse card: 1c", func() {
		CardFromString("1c")
	})
	a.PanicsWithValue("could not parse card: 15c", func() {
		CardFromString("15c")
	})
	a.PanicsWithValue("could not parse card: 2x", func() {
		CardFromString("2x")
	})
}

func TestCardsFromString(t *testing.T) {
	a := assert.New(t)
	a.Equal(Hand{}, CardsFromString(""))

	cards := CardsFromString("2c,13h,14s")
	a.Equal(Hand{
		{Rank: 2, Suit: Clubs},
		{Rank: King, Suit: Hearts},
		{Rank: Ace, Suit: Spades},
	}, cards)
	a.Equal("2c,13h,14s", CardsToString(cards))
}
