package poker

import (
	"errors"
	"fmt"
	"sort"

	"tablepoker-server/pkg/deck"
)

// HoldemCards is the number of cards a Texas Hold'em player chooses from (two hole cards and the board)
const HoldemCards = 7

// HandSize is the number of cards that make a poker hand
const HandSize = 5

// ErrDuplicateCard is returned when the same card is evaluated twice
var ErrDuplicateCard = errors.New("duplicate card")

const (
	rankBits      = 4
	categoryShift = rankBits * HandSize
)

// Score is a totally ordered value of a five-card hand
// A higher score always beats a lower score and equal scores tie.
// The category occupies the high bits, followed by up to five significant
// ranks (most significant first), four bits each.
type Score int

// MaxScore is the score of a royal flush
var MaxScore = newScore(StraightFlush, []int{deck.Ace})

func newScore(category HandRank, ranks []int) Score {
	s := int(category) << categoryShift
	for i := 0; i < HandSize; i++ {
		r := 0
		if i < len(ranks) {
			r = ranks[i]
		}

		s |= r << (rankBits * (HandSize - 1 - i))
	}

	return Score(s)
}

// Category returns the hand category of the score
func (s Score) Category() HandRank {
	category := HandRank(int(s) >> categoryShift)
	if category == StraightFlush && s.Ranks()[0] == deck.Ace {
		return RoyalFlush
	}

	return category
}

// Ranks returns the significant ranks of the score, most significant first
// Unused positions are zero.
func (s Score) Ranks() [HandSize]int {
	var ranks [HandSize]int
	for i := 0; i < HandSize; i++ {
		ranks[i] = (int(s) >> (rankBits * (HandSize - 1 - i))) & (1<<rankBits - 1)
	}

	return ranks
}

func (s Score) String() string {
	return s.Category().String()
}

// Describe returns a human readable description, i.e., "Full house, 2s full of 5s"
func (s Score) Describe() string {
	r := s.Ranks()
	name := func(rank int) string {
		return deck.Card{Rank: rank}.RankString()
	}

	switch c := s.Category(); c {
	case RoyalFlush:
		return c.String()
	case StraightFlush, Straight:
		return fmt.Sprintf("%s, %s high", c, name(r[0]))
	case Flush:
		return fmt.Sprintf("%s, %s high", c, name(r[0]))
	case FourOfAKind, ThreeOfAKind:
		return fmt.Sprintf("%s, %ss", c, name(r[0]))
	case FullHouse:
		return fmt.Sprintf("%s, %ss full of %ss", c, name(r[0]), name(r[1]))
	case TwoPair:
		return fmt.Sprintf("%s, %ss and %ss", c, name(r[0]), name(r[1]))
	case OnePair:
		return fmt.Sprintf("Pair of %ss", name(r[0]))
	default:
		return fmt.Sprintf("%s %s", c, name(r[0]))
	}
}

// Evaluate scores the best five-card hand that can be made from exactly seven cards
func Evaluate(cards []deck.Card) (Score, error) {
	score, _, err := Best(cards)
	return score, err
}

// Best returns the score and the cards of the best five-card hand that can be made
// from exactly seven cards. All 21 five-card subsets are scored.
func Best(cards []deck.Card) (Score, deck.Hand, error) {
	if len(cards) != HoldemCards {
		return 0, nil, fmt.Errorf("expected %d cards, got %d", HoldemCards, len(cards))
	}

	seen := make(map[deck.Card]bool, len(cards))
	for _, c := range cards {
		if !c.Valid() {
			return 0, nil, fmt.Errorf("invalid card: %+v", c)
		}

		if seen[c] {
			return 0, nil, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c] = true
	}

	best := Score(-1)
	var bestHand deck.Hand
	var five [HandSize]deck.Card

	// every subset is the seven cards minus two excluded cards
	for skipA := 0; skipA < len(cards); skipA++ {
		for skipB := skipA + 1; skipB < len(cards); skipB++ {
			n := 0
			for i, c := range cards {
				if i != skipA && i != skipB {
					five[n] = c
					n++
				}
			}

			if score := scoreFive(five); score > best {
				best = score
				bestHand = deck.Hand(five[:]).Clone()
			}
		}
	}

	return best, bestHand, nil
}

type rankGroup struct {
	rank  int
	count int
}

// scoreFive scores exactly five cards
func scoreFive(cards [HandSize]deck.Card) Score {
	counts := make(map[int]int, HandSize)
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	groups := make([]rankGroup, 0, len(counts))
	for rank, count := range counts {
		groups = append(groups, rankGroup{rank: rank, count: count})
	}

	// larger groups first, then higher ranks
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}

		return groups[i].rank > groups[j].rank
	})

	ranks := make([]int, len(groups))
	for i, g := range groups {
		ranks[i] = g.rank
	}

	straightHigh := 0
	if len(groups) == HandSize {
		if ranks[0]-ranks[4] == 4 {
			straightHigh = ranks[0]
		} else if ranks[0] == deck.Ace && ranks[1] == 5 {
			// the wheel: A-2-3-4-5, the ace plays low
			straightHigh = 5
		}
	}

	switch {
	case straightHigh > 0 && flush:
		return newScore(StraightFlush, []int{straightHigh})
	case groups[0].count == 4:
		return newScore(FourOfAKind, ranks)
	case groups[0].count == 3 && groups[1].count == 2:
		return newScore(FullHouse, ranks)
	case flush:
		return newScore(Flush, ranks)
	case straightHigh > 0:
		return newScore(Straight, []int{straightHigh})
	case groups[0].count == 3:
		return newScore(ThreeOfAKind, ranks)
	case groups[0].count == 2 && groups[1].count == 2:
		return newScore(TwoPair, ranks)
	case groups[0].count == 2:
		return newScore(OnePair, ranks)
	default:
		return newScore(HighCard, ranks)
	}
}
