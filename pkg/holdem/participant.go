package holdem

import (
	"tablepoker-server/pkg/deck"
)

// Player is someone seated at the table
// The hand moves chips through AdjustStack; it never drives a stack below zero.
type Player interface {
	ID() string
	Stack() int
	AdjustStack(amount int)
}

// participant is a player dealt into a hand
type participant struct {
	Player

	// index is the position in the action order
	index int
	cards deck.Hand

	// contributed is the total put into the pot this hand
	contributed int
	// bet is the amount put in during the current betting round
	bet int

	folded bool
	allIn  bool
	acted  bool
}

// canAct returns true if the participant can check, call, raise, or fold
func (p *participant) canAct() bool {
	return !p.folded && !p.allIn
}

// commit moves chips from the stack into the pot
// If amount reaches the stack, the participant is all-in. Returns the amount moved.
func (p *participant) commit(amount int) int {
	if amount <= 0 {
		return 0
	}

	if amount >= p.Stack() {
		amount = p.Stack()
		p.allIn = true
	}

	p.AdjustStack(-amount)
	p.bet += amount
	p.contributed += amount

	return amount
}

// ParticipantState is the public view of a participant
type ParticipantState struct {
	PlayerID    string `json:"playerId"`
	Stack       int    `json:"stack"`
	Bet         int    `json:"bet"`
	Contributed int    `json:"contributed"`
	Folded      bool   `json:"folded"`
	AllIn       bool   `json:"allIn"`
}

func (p *participant) state() ParticipantState {
	return ParticipantState{
		PlayerID:    p.ID(),
		Stack:       p.Stack(),
		Bet:         p.bet,
		Contributed: p.contributed,
		Folded:      p.folded,
		AllIn:       p.allIn,
	}
}
