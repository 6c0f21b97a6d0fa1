package deck

import (
	"tablepoker-server/internal/rng"
)

// stackedGenerator replays the Fisher-Yates choices computed by NewStackedGenerator
type stackedGenerator struct {
	choices []int
}

func (s *stackedGenerator) Intn(n int) int {
	if len(s.choices) == 0 {
		return n - 1
	}

	c := s.choices[0]
	s.choices = s.choices[1:]
	return c
}

// NewStackedGenerator returns a generator that makes the next Shuffle() leave the
// given cards on top of the deck in order, followed by the rest in new-deck order.
// This is for tests that need known hands.
func NewStackedGenerator(top ...Card) rng.Generator {
	cur := New().Cards
	want := make([]Card, 0, Size)
	onTop := make(map[Card]bool, len(top))
	for _, c := range top {
		if onTop[c] {
			panic("card stacked twice: " + c.String())
		}

		onTop[c] = true
		want = append(want, c)
	}

	for _, c := range cur {
		if !onTop[c] {
			want = append(want, c)
		}
	}

	choices := make([]int, 0, Size-1)
	for j := len(cur) - 1; j > 0; j-- {
		i := 0
		for cur[i] != want[j] {
			i++
		}

		choices = append(choices, i)
		cur[i], cur[j] = cur[j], cur[i]
	}

	return &stackedGenerator{choices: choices}
}
