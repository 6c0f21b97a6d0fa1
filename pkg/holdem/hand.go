package holdem

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"tablepoker-server/pkg/deck"
	"tablepoker-server/pkg/poker"
)

// Options configures the blinds
type Options struct {
	SmallBlind int `json:"smallBlind" yaml:"smallBlind" envconfig:"small_blind"`
	BigBlind   int `json:"bigBlind" yaml:"bigBlind" envconfig:"big_blind"`
}

// DefaultOptions returns the default blinds
func DefaultOptions() Options {
	return Options{
		SmallBlind: 50,
		BigBlind:   100,
	}
}

// Validate returns an error if the options cannot be used
func (o Options) Validate() error {
	if o.SmallBlind <= 0 {
		return errors.New("small blind must be > 0")
	}

	if o.BigBlind < o.SmallBlind {
		return errors.New("big blind must be >= the small blind")
	}

	return nil
}

// Hand is a single deal of Texas Hold'em
// A Hand is not safe for concurrent use. The owning table serializes access.
type Hand struct {
	ID      string
	Number  int
	options Options
	phase   Phase
	deck    *deck.Deck

	community deck.Hand
	// order is the fixed action order, starting left of the dealer
	order []*participant
	byID  map[string]*participant
	pot   int
	round *bettingRound

	result *Result
	logs   []*LogMessage
}

// Result describes how the pot was paid out
type Result struct {
	Pot int `json:"pot"`
	// Winners are in action order
	Winners []string       `json:"winners"`
	Payouts map[string]int `json:"payouts"`
	// Remainder is the chips left over after an even split
	Remainder   int         `json:"remainder"`
	Uncontested bool        `json:"uncontested"`
	Aborted     bool        `json:"aborted,omitempty"`
	Shown       []ShownHand `json:"shown,omitempty"`
}

// ShownHand is a hand revealed at showdown
type ShownHand struct {
	PlayerID string      `json:"playerId"`
	Cards    deck.Hand   `json:"cards"`
	Best     deck.Hand   `json:"best"`
	Score    poker.Score `json:"score"`
}

// NewHand deals a new hand
// players must be in seat order and dealer is the index of the dealer in players.
// The small blind is posted by the player left of the dealer and the big blind by the next.
func NewHand(number int, opts Options, players []Player, dealer int, d *deck.Deck) (*Hand, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	n := len(players)
	if n < 2 {
		return nil, errors.New("there must be at least two players")
	}

	if dealer < 0 || dealer >= n {
		return nil, fmt.Errorf("invalid dealer position: %d", dealer)
	}

	if d == nil {
		d = deck.New()
	}

	h := &Hand{
		ID:        uuid.New().String(),
		Number:    number,
		options:   opts,
		phase:     PhasePreFlop,
		deck:      d,
		community: make(deck.Hand, 0, 5),
		order:     make([]*participant, n),
		byID:      make(map[string]*participant, n),
	}

	for i := 0; i < n; i++ {
		pl := players[(dealer+1+i)%n]
		if _, ok := h.byID[pl.ID()]; ok {
			return nil, fmt.Errorf("player %s is seated twice", pl.ID())
		}

		if pl.Stack() <= 0 {
			return nil, fmt.Errorf("player %s has no chips", pl.ID())
		}

		p := &participant{Player: pl, index: i, cards: make(deck.Hand, 0, 2)}
		h.order[i] = p
		h.byID[pl.ID()] = p
	}

	if err := h.start(); err != nil {
		h.Abort()
		return nil, err
	}

	return h, nil
}

func (h *Hand) start() error {
	h.deck.Shuffle()
	h.logf("Hand #%d", h.Number)

	h.round = newBettingRound(h.order, h.options.BigBlind, &h.pot)

	sb := h.order[0]
	bb := h.order[1%len(h.order)]
	h.logPlayer(sb.ID(), "posts the small blind of $%d", h.round.post(sb, h.options.SmallBlind))
	h.logPlayer(bb.ID(), "posts the big blind of $%d", h.round.post(bb, h.options.BigBlind))

	for i := 0; i < 2; i++ {
		for _, p := range h.order {
			card, err := h.deck.Draw()
			if err != nil {
				return pkgerrors.Wrap(ErrInvariant, err.Error())
			}

			p.cards.AddCard(card)
		}
	}

	// preflop action starts left of the big blind
	h.round.start(2 % len(h.order))
	if err := h.advance(); err != nil {
		return err
	}

	return h.CheckInvariants()
}

// Act applies an action from the player
// A ParticipantError means nothing changed. Any other error is structural and the hand must be aborted.
func (h *Hand) Act(playerID string, action Action, amount int) error {
	if h.IsComplete() {
		return ErrHandComplete
	}

	p, ok := h.byID[playerID]
	if !ok {
		return ErrNotInHand
	}

	if !action.IsValid() {
		return newParticipantError("unknown action: %s", action)
	}

	moved, err := h.round.act(p, action, amount)
	if err != nil {
		return err
	}

	switch action {
	case Raise:
		h.logPlayer(p.ID(), action.LogMessage(p.bet))
	case Call:
		if moved == 0 {
			h.logPlayer(p.ID(), Check.LogMessage(0))
		} else {
			h.logPlayer(p.ID(), action.LogMessage(moved))
		}
	default:
		h.logPlayer(p.ID(), action.LogMessage(moved))
	}

	if err := h.advance(); err != nil {
		return err
	}

	return h.CheckInvariants()
}

// advance moves the hand forward until someone has to act or the hand is over
func (h *Hand) advance() error {
	for !h.IsComplete() {
		if h.remaining() == 1 {
			h.awardUncontested()
			return nil
		}

		if !h.round.isComplete() {
			return nil
		}

		if h.phase == PhaseRiver {
			return h.showdown()
		}

		if err := h.nextStreet(); err != nil {
			return err
		}
	}

	return nil
}

func (h *Hand) nextStreet() error {
	h.phase++

	dealt := make(deck.Hand, 0, 3)
	for i := 0; i < h.phase.communityCards(); i++ {
		card, err := h.deck.Draw()
		if err != nil {
			return pkgerrors.Wrap(ErrInvariant, err.Error())
		}

		dealt.AddCard(card)
	}

	h.community = append(h.community, dealt...)
	h.logCards(dealt, "%s: %s", h.phase, h.community)

	// postflop action starts left of the dealer
	h.round = newBettingRound(h.order, h.options.BigBlind, &h.pot)
	h.round.start(0)
	return nil
}

func (h *Hand) remaining() int {
	count := 0
	for _, p := range h.order {
		if !p.folded {
			count++
		}
	}

	return count
}

func (h *Hand) awardUncontested() {
	for _, p := range h.order {
		if p.folded {
			continue
		}

		p.AdjustStack(h.pot)
		h.result = &Result{
			Pot:         h.pot,
			Winners:     []string{p.ID()},
			Payouts:     map[string]int{p.ID(): h.pot},
			Uncontested: true,
		}
		h.logPlayer(p.ID(), "wins $%d", h.pot)
	}

	h.round.actor = -1
}

// showdown awards the whole pot to the best live hand. There are no side pots, so a
// short all-in can win chips it never matched.
func (h *Hand) showdown() error {
	h.phase = PhaseShowdown
	h.round.actor = -1

	shown := make([]ShownHand, 0, len(h.order))
	best := poker.Score(-1)
	for _, p := range h.order {
		if p.folded {
			continue
		}

		cards := append(p.cards.Clone(), h.community...)
		score, bestFive, err := poker.Best(cards)
		if err != nil {
			return pkgerrors.Wrap(ErrInvariant, err.Error())
		}

		shown = append(shown, ShownHand{
			PlayerID: p.ID(),
			Cards:    p.cards.Clone(),
			Best:     bestFive,
			Score:    score,
		})
		h.logs = append(h.logs, newLogMessage([]string{p.ID()}, p.cards.Clone(), "{} shows %s: %s", p.cards, score.Describe()))

		if score > best {
			best = score
		}
	}

	winners := make([]string, 0, 1)
	for _, s := range shown {
		if s.Score == best {
			winners = append(winners, s.PlayerID)
		}
	}

	share := h.pot / len(winners)
	result := &Result{
		Pot:       h.pot,
		Winners:   winners,
		Payouts:   make(map[string]int, len(winners)),
		Remainder: h.pot - share*len(winners),
		Shown:     shown,
	}

	for _, id := range winners {
		h.byID[id].AdjustStack(share)
		result.Payouts[id] = share
		h.logPlayer(id, "wins $%d with %s", share, best.Describe())
	}

	if result.Remainder > 0 {
		h.logf("$%d could not be split evenly and goes to the house", result.Remainder)
	}

	h.result = result
	return nil
}

// Abort returns every contribution to its player and ends the hand without a winner
func (h *Hand) Abort() {
	for _, p := range h.order {
		if p.contributed > 0 {
			p.AdjustStack(p.contributed)
			p.contributed = 0
			p.bet = 0
		}
	}

	h.pot = 0
	if h.round != nil {
		h.round.actor = -1
	}

	h.result = &Result{Payouts: map[string]int{}, Aborted: true}
}

// IsComplete returns true once the pot has been awarded (or the hand aborted)
func (h *Hand) IsComplete() bool {
	return h.result != nil
}

// Result returns the result of a completed hand, or nil
func (h *Hand) Result() *Result {
	return h.result
}

// Phase returns the current street
func (h *Hand) Phase() Phase {
	return h.phase
}

// Pot returns the pot total
func (h *Hand) Pot() int {
	return h.pot
}

// Community returns the community cards dealt so far
func (h *Hand) Community() deck.Hand {
	return h.community.Clone()
}

// HoleCards returns the private cards dealt to the player
func (h *Hand) HoleCards(playerID string) (deck.Hand, bool) {
	p, ok := h.byID[playerID]
	if !ok {
		return nil, false
	}

	return p.cards.Clone(), true
}

// PlayerIDs returns the participants in action order
func (h *Hand) PlayerIDs() []string {
	ids := make([]string, len(h.order))
	for i, p := range h.order {
		ids[i] = p.ID()
	}

	return ids
}

// Prompt describes the decision the participant on the clock must make
type Prompt struct {
	PlayerID string `json:"playerId"`
	Phase    Phase  `json:"phase"`
	Pot      int    `json:"pot"`
	ToCall   int    `json:"toCall"`
	Stack    int    `json:"stack"`
	MinRaise int    `json:"minRaise"`
	// CanRaise is false when calling would already put the player all-in
	CanRaise bool `json:"canRaise"`
}

// Pending returns the prompt for the participant who must act, or false if nobody is waited on
func (h *Hand) Pending() (Prompt, bool) {
	if h.IsComplete() {
		return Prompt{}, false
	}

	p := h.round.current()
	if p == nil {
		return Prompt{}, false
	}

	toCall := h.round.toCall(p)
	return Prompt{
		PlayerID: p.ID(),
		Phase:    h.phase,
		Pot:      h.pot,
		ToCall:   toCall,
		Stack:    p.Stack(),
		MinRaise: h.round.minRaise,
		CanRaise: p.Stack() >= toCall+h.round.minRaise,
	}, true
}

// CheckInvariants verifies the pot matches all contributions and that no card exists twice
func (h *Hand) CheckInvariants() error {
	contributed := 0
	for _, p := range h.order {
		contributed += p.contributed
	}

	if contributed != h.pot {
		return pkgerrors.Wrapf(ErrInvariant, "pot is %d but contributions total %d", h.pot, contributed)
	}

	seen := make(map[deck.Card]bool, deck.Size)
	count := 0
	check := func(cards []deck.Card) error {
		for _, c := range cards {
			if seen[c] {
				return pkgerrors.Wrapf(ErrInvariant, "card %s exists twice", c)
			}
			seen[c] = true
			count++
		}

		return nil
	}

	for _, p := range h.order {
		if err := check(p.cards); err != nil {
			return err
		}
	}

	if err := check(h.community); err != nil {
		return err
	}

	if err := check(h.deck.Cards); err != nil {
		return err
	}

	if count != deck.Size {
		return pkgerrors.Wrapf(ErrInvariant, "expected %d cards in play, found %d", deck.Size, count)
	}

	return nil
}

// State is the public view of the hand
type State struct {
	ID           string             `json:"id"`
	Number       int                `json:"number"`
	Phase        Phase              `json:"phase"`
	Community    deck.Hand          `json:"community"`
	Pot          int                `json:"pot"`
	Actor        string             `json:"actor,omitempty"`
	Participants []ParticipantState `json:"participants"`
	Result       *Result            `json:"result,omitempty"`
}

// State returns the public view of the hand. Hole cards are never included.
func (h *Hand) State() State {
	s := State{
		ID:           h.ID,
		Number:       h.Number,
		Phase:        h.phase,
		Community:    h.community.Clone(),
		Pot:          h.pot,
		Participants: make([]ParticipantState, len(h.order)),
		Result:       h.result,
	}

	if p, ok := h.Pending(); ok {
		s.Actor = p.PlayerID
	}

	for i, p := range h.order {
		s.Participants[i] = p.state()
	}

	return s
}
