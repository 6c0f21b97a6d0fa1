package holdem

// bettingRound tracks the action on a single street
type bettingRound struct {
	order []*participant
	pot   *int

	// maxBet is the largest contribution any participant made this round
	maxBet   int
	minRaise int

	// actor is the index in order of the participant on the clock, -1 once complete
	actor int
}

func newBettingRound(order []*participant, minRaise int, pot *int) *bettingRound {
	for _, p := range order {
		p.bet = 0
		p.acted = false
	}

	return &bettingRound{
		order:    order,
		pot:      pot,
		minRaise: minRaise,
		actor:    -1,
	}
}

// post adds a forced bet (blind). Posting does not count as acting.
func (r *bettingRound) post(p *participant, amount int) int {
	moved := p.commit(amount)
	*r.pot += moved
	if p.bet > r.maxBet {
		r.maxBet = p.bet
	}

	return moved
}

// start puts the first eligible participant at or after index on the clock
func (r *bettingRound) start(index int) {
	if r.isComplete() {
		r.actor = -1
		return
	}

	r.actor = r.nextEligible(index)
}

// current returns the participant on the clock or nil if the round is complete
func (r *bettingRound) current() *participant {
	if r.actor < 0 {
		return nil
	}

	return r.order[r.actor]
}

// toCall returns how much the participant owes to stay in
func (r *bettingRound) toCall(p *participant) int {
	if owed := r.maxBet - p.bet; owed > 0 {
		return owed
	}

	return 0
}

// isComplete returns true once no participant who can act owes action
// A participant who can still act never finishes a round below the round maximum.
func (r *bettingRound) isComplete() bool {
	canAct := 0
	waiting := false
	for _, p := range r.order {
		if !p.canAct() {
			continue
		}

		canAct++
		if p.bet < r.maxBet {
			return false
		}

		if !p.acted {
			waiting = true
		}
	}

	if canAct <= 1 {
		return true
	}

	return !waiting
}

// nextEligible returns the index of the first participant from index (inclusive) who can act
func (r *bettingRound) nextEligible(index int) int {
	n := len(r.order)
	for i := 0; i < n; i++ {
		idx := (index + i) % n
		if r.order[idx].canAct() {
			return idx
		}
	}

	return -1
}

// act applies an action for the participant on the clock
// Returns the number of chips the participant moved into the pot.
func (r *bettingRound) act(p *participant, action Action, amount int) (int, error) {
	if r.current() != p {
		return 0, ErrNotYourTurn
	}

	owed := r.toCall(p)
	moved := 0

	switch action {
	case Fold:
		p.folded = true

	case Check:
		if owed > 0 {
			return 0, newParticipantError("you cannot check with an active bet")
		}

	case Call:
		moved = p.commit(owed)

	case Raise:
		if amount < r.minRaise {
			return 0, newParticipantError("your raise must be at least $%d", r.minRaise)
		}

		if owed+amount > p.Stack() {
			return 0, newParticipantError("you only have $%d; go all-in instead", p.Stack())
		}

		moved = p.commit(owed + amount)
		r.minRaise = amount
		r.maxBet = p.bet
		r.reopen(p)

	case AllIn:
		moved = p.commit(p.Stack())
		if p.bet > r.maxBet {
			if increment := p.bet - r.maxBet; increment > r.minRaise {
				r.minRaise = increment
			}

			r.maxBet = p.bet
			r.reopen(p)
		}

	default:
		return 0, newParticipantError("unknown action: %s", action)
	}

	p.acted = true
	*r.pot += moved

	if r.isComplete() {
		r.actor = -1
	} else {
		r.actor = r.nextEligible(p.index + 1)
	}

	return moved, nil
}

// reopen requires everyone but the aggressor to respond again
func (r *bettingRound) reopen(aggressor *participant) {
	for _, p := range r.order {
		if p != aggressor {
			p.acted = false
		}
	}
}
