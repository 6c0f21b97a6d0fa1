package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := assert.New(t)
	d := New()

	a.Equal(Size, d.CardsLeft())
	a.Equal(Card{Rank: 2, Suit: Clubs}, d.Cards[0])
	a.Equal(Card{Rank: 14, Suit: Spades}, d.Cards[51])
	assertUnique(t, d.Cards)
}

func TestDeck_Shuffle(t *testing.T) {
	a := assert.New(t)

	d1 := New()
	d1.SetSeed(1)
	d1.Shuffle()

	d2 := New()
	d2.SetSeed(1)
	d2.Shuffle()

	a.Equal(d1.HashCode(), d2.HashCode(), "same seed produces the same order")
	a.NotEqual(New().HashCode(), d1.HashCode())
	a.Equal(Size, d1.CardsLeft())
	assertUnique(t, d1.Cards)

	// shuffling after draws rebuilds the full deck
	_, _ = d1.Draw()
	_, _ = d1.Draw()
	before := d1.HashCode()
	d1.Shuffle()
	a.Equal(Size, d1.CardsLeft())
	a.NotEqual(before, d1.HashCode())
	assertUnique(t, d1.Cards)
}

type fixedGenerator struct{}

func (fixedGenerator) Intn(n int) int {
	return n - 1
}

func TestDeck_SetGenerator(t *testing.T) {
	d := New()
	d.SetGenerator(fixedGenerator{})
	d.Shuffle()

	// choosing j on every step leaves the deck unchanged
	assert.Equal(t, New().HashCode(), d.HashCode())
}

func TestDeck_Draw(t *testing.T) {
	a := assert.New(t)
	d := New()

	a.True(d.CanDraw(52))
	a.False(d.CanDraw(53))

	drawn := make([]Card, 0, Size)
	for i := 0; i < Size; i++ {
		card, err := d.Draw()
		a.NoError(err)
		a.True(card.Valid())
		drawn = append(drawn, card)
	}
	assertUnique(t, drawn)

	a.False(d.CanDraw(1))

	card, err := d.Draw()
	a.Equal(Card{}, card)
	a.Equal(ErrEndOfDeck, err)

	d.Shuffle()
	a.True(d.CanDraw(52), "Shuffle() rebuilds the deck")
}

func assertUnique(t *testing.T, cards []Card) {
	t.Helper()

	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
}

func TestNewStackedGenerator(t *testing.T) {
	a := assert.New(t)

	top := CardsFromString("14s,14h,2c,7d")
	d := New()
	d.SetGenerator(NewStackedGenerator(top...))
	d.Shuffle()

	a.Equal(Size, d.CardsLeft())
	assertUnique(t, d.Cards)
	for _, want := range top {
		card, err := d.Draw()
		a.NoError(err)
		a.Equal(want, card)
	}

	a.PanicsWithValue("card stacked twice: A♠", func() {
		NewStackedGenerator(CardsFromString("14s,14s")...)
	})
}
