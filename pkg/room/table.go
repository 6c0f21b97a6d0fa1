package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tablepoker-server/internal/metrics"
	"tablepoker-server/internal/util"
	"tablepoker-server/pkg/deck"
	"tablepoker-server/pkg/history"
	"tablepoker-server/pkg/holdem"
	"tablepoker-server/pkg/ledger"
)

// table states
const (
	StateWaiting = "waiting"
	StateActive  = "active"
	StateEnded   = "ended"
	StateErrored = "errored"
)

// table events
const (
	eventStart = "start"
	eventEnd   = "end"
	eventFail  = "fail"
)

// Table is a poker table bound to a chat channel
// A Table is not safe for concurrent use. Every method must be called from its dealer's run loop.
type Table struct {
	ChannelID string
	// CreatorID is the player who opened the table
	CreatorID string
	Created   time.Time
	// Rake is every chip that could not be split evenly
	Rake int

	opts      Options
	ledger    ledger.Ledger
	messenger Messenger
	recorder  history.Recorder
	clock     quartz.Clock
	newDeck   func() *deck.Deck

	// enqueue runs fn on the run loop; it is how timers get back onto the table
	enqueue func(fn func())
	// onClose is called once the table has ended or errored
	onClose func()

	status   *fsm.FSM
	players  []*Player
	waitlist []*Player
	leaving  map[string]bool
	names    map[string]string

	dealer    int
	handCount int
	hand      *holdem.Hand
	lastHand  *holdem.Hand
	handLog   []*holdem.LogMessage
	turn      *turnTimer
	nextDeal  *quartz.Timer

	lobbyMessageID string
	threadID       string
}

// NewTable returns a table waiting for players
func NewTable(channelID, creatorID string, opts Options, l ledger.Ledger, m Messenger, clock quartz.Clock) *Table {
	return &Table{
		ChannelID: channelID,
		CreatorID: creatorID,
		Created:   clock.Now(),
		opts:      opts,
		ledger:    l,
		messenger: m,
		clock:     clock,
		newDeck:   deck.New,
		enqueue:   func(fn func()) { fn() },
		onClose:   func() {},
		status: fsm.NewFSM(
			StateWaiting,
			fsm.Events{
				{Name: eventStart, Src: []string{StateWaiting}, Dst: StateActive},
				{Name: eventEnd, Src: []string{StateWaiting, StateActive}, Dst: StateEnded},
				{Name: eventFail, Src: []string{StateWaiting, StateActive}, Dst: StateErrored},
			},
			fsm.Callbacks{},
		),
		leaving: make(map[string]bool),
		names:   make(map[string]string),
	}
}

// Status returns the table's lifecycle state
func (t *Table) Status() string {
	return t.status.Current()
}

func (t *Table) isOpen() bool {
	return t.status.Is(StateWaiting) || t.status.Is(StateActive)
}

func (t *Table) transition(event string) {
	if err := t.status.Event(event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"channelID": t.ChannelID,
			"event":     event,
			"state":     t.status.Current(),
		}).Error("could not transition table")
	}
}

func (t *Table) logger() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"channelID": t.ChannelID,
		"status":    t.status.Current(),
		"hand":      t.handCount,
	})
}

func (t *Table) isEmpty() bool {
	return t.status.Is(StateWaiting) && len(t.players) == 0 && len(t.waitlist) == 0
}

func (t *Table) seatIndex(playerID string) int {
	for i, p := range t.players {
		if p.ID() == playerID {
			return i
		}
	}

	return -1
}

func (t *Table) waitlistIndex(playerID string) int {
	for i, p := range t.waitlist {
		if p.ID() == playerID {
			return i
		}
	}

	return -1
}

func (t *Table) seat(p *Player) {
	t.players = append(t.players, p)
	t.names[p.ID()] = p.Name
	metrics.Metrics.PlayersSeated(1)
}

func (t *Table) unseat(index int) *Player {
	p := t.players[index]
	t.players = append(t.players[:index], t.players[index+1:]...)
	delete(t.leaving, p.ID())
	metrics.Metrics.PlayersSeated(-1)

	return p
}

// Join sits the player down, or puts them on the waitlist if a game is running
func (t *Table) Join(ctx context.Context, playerID, name string) (string, error) {
	if !t.isOpen() {
		return "", ErrTableClosed
	}

	if t.seatIndex(playerID) >= 0 || t.waitlistIndex(playerID) >= 0 {
		return "", ErrAlreadyJoined
	}

	balance, err := t.ledger.GetBalance(ctx, playerID)
	if err != nil {
		metrics.Metrics.LedgerFailure()
		return "", errors.Wrap(err, "could not get balance")
	}

	if balance < t.opts.MinBuyIn() {
		return "", UserError(fmt.Sprintf("you need at least $%d to join; you have $%d", t.opts.MinBuyIn(), balance))
	}

	if len(t.players)+len(t.waitlist) >= t.opts.MaxPlayers {
		return "", UserError(fmt.Sprintf("the table is full (%d players)", t.opts.MaxPlayers))
	}

	p := newPlayer(playerID, name, balance)
	t.names[playerID] = name

	if t.status.Is(StateActive) {
		t.waitlist = append(t.waitlist, p)
		t.post(ctx, fmt.Sprintf("%s will join from the next deal with $%d.", name, balance))
		return fmt.Sprintf("You will join at the next hand with $%d!", balance), nil
	}

	t.seat(p)
	t.updateLobby(ctx)

	return fmt.Sprintf("You joined the table with $%d! (%d/%d players)", balance, len(t.players), t.opts.MaxPlayers), nil
}

// Leave removes the player now if the game hasn't started, otherwise after the current hand
func (t *Table) Leave(ctx context.Context, playerID string) (string, error) {
	if !t.isOpen() {
		return "", ErrTableClosed
	}

	if i := t.waitlistIndex(playerID); i >= 0 {
		t.waitlist = append(t.waitlist[:i], t.waitlist[i+1:]...)
		return "You left the waitlist.", nil
	}

	i := t.seatIndex(playerID)
	if i < 0 {
		return "", ErrNotAtTable
	}

	if t.status.Is(StateWaiting) {
		// nothing was bought in yet, so there is nothing to settle
		t.unseat(i)
		if len(t.players) == 0 {
			t.post(ctx, "Everyone left the lobby. Table closed.")
			t.close(StateEnded)
			return "You left the lobby.", nil
		}

		t.updateLobby(ctx)
		return "You left the lobby.", nil
	}

	if t.leaving[playerID] {
		return "", ErrAlreadyLeaving
	}

	t.leaving[playerID] = true
	t.post(ctx, fmt.Sprintf("%s will leave after this hand.", t.players[i].Name))

	return "You'll leave after this hand. Your chips will be paid out.", nil
}

// Start opens the game thread and deals the first hand after the start delay
func (t *Table) Start(ctx context.Context, playerID string) (string, error) {
	if !t.status.Is(StateWaiting) {
		return "", ErrNoLobby
	}

	if t.seatIndex(playerID) < 0 && !t.opts.IsAdmin(playerID) {
		return "", ErrNotAtTable
	}

	if len(t.players) < t.opts.MinPlayers {
		return "", UserError(fmt.Sprintf("you need at least %d players to start (currently %d)", t.opts.MinPlayers, len(t.players)))
	}

	threadID, err := t.messenger.CreateThread(ctx, t.ChannelID, "Poker: "+util.GetRandomName())
	if err != nil {
		t.logger().WithError(err).Error("could not create thread")
	} else {
		t.threadID = threadID
	}

	t.transition(eventStart)

	names := make([]string, len(t.players))
	for i, p := range t.players {
		names[i] = p.Name
	}

	t.post(ctx, fmt.Sprintf("**Poker game starting!**\nPlayers: %s\n\nThe first hand is dealt in %s...",
		strings.Join(names, ", "), t.opts.StartDelay))
	t.scheduleDeal(t.opts.StartDelay)

	return "Game started! Follow along in the poker thread.", nil
}

// End settles every seated player and closes the table
func (t *Table) End(ctx context.Context, playerID string) (string, error) {
	if !t.isOpen() {
		return "", ErrTableClosed
	}

	if playerID != t.CreatorID && !t.opts.IsAdmin(playerID) {
		return "", ErrNotAdmin
	}

	t.stopTimers()
	if t.hand != nil && !t.hand.IsComplete() {
		t.hand.Abort()
		t.finishLog()
		t.recordHand(ctx)
	}

	t.post(ctx, "Game ended by an admin. Settling chips...")
	t.settleAll(ctx)
	t.close(StateEnded)

	return "Game ended. All chips settled.", nil
}

// Shutdown refunds any hand in progress, settles everyone, and closes the table
func (t *Table) Shutdown(ctx context.Context) {
	if !t.isOpen() {
		return
	}

	t.stopTimers()
	if t.hand != nil && !t.hand.IsComplete() {
		t.hand.Abort()
		t.finishLog()
		t.recordHand(ctx)
	}

	t.post(ctx, "The server is restarting. Bets were returned and chips settled.")
	t.settleAll(ctx)
	t.close(StateEnded)
}

// settleAll pays out every seated player's profit or loss
func (t *Table) settleAll(ctx context.Context) {
	lines := make([]string, 0, len(t.players)+1)
	lines = append(lines, "**Final standings**")
	for len(t.players) > 0 {
		p := t.unseat(0)
		net := t.settle(ctx, p)
		lines = append(lines, fmt.Sprintf("%s: $%d (%s)", p.Name, p.Stack(), describeNet(net)))
	}

	t.waitlist = nil
	if t.Rake > 0 {
		lines = append(lines, fmt.Sprintf("House: $%d from uneven splits", t.Rake))
	}

	lines = append(lines, "Table closed. Thanks for playing!")
	t.post(ctx, strings.Join(lines, "\n"))
}

// settle applies the player's net result to the ledger
func (t *Table) settle(ctx context.Context, p *Player) int {
	net := p.Net()
	if net == 0 {
		return 0
	}

	if _, err := t.ledger.AdjustBalance(ctx, p.ID(), net); err != nil {
		metrics.Metrics.LedgerFailure()
		t.logger().WithError(err).WithFields(logrus.Fields{
			"playerID": p.ID(),
			"net":      net,
		}).Error("could not settle player")
	}

	return net
}

func describeNet(net int) string {
	switch {
	case net > 0:
		return fmt.Sprintf("+$%d", net)
	case net < 0:
		return fmt.Sprintf("-$%d", -net)
	default:
		return "broke even"
	}
}

func (t *Table) close(state string) {
	t.stopTimers()
	t.hand = nil

	if state == StateErrored {
		t.transition(eventFail)
	} else {
		t.transition(eventEnd)
	}

	t.onClose()
}

func (t *Table) stopTimers() {
	if t.turn != nil {
		t.turn.stop()
		t.turn = nil
	}

	if t.nextDeal != nil {
		t.nextDeal.Stop()
		t.nextDeal = nil
	}
}

// channel returns where table chatter goes: the game thread once there is one
func (t *Table) channel() string {
	if t.threadID != "" {
		return t.threadID
	}

	return t.ChannelID
}

func (t *Table) post(ctx context.Context, text string) {
	if _, err := t.messenger.Post(ctx, t.channel(), text); err != nil {
		t.logger().WithError(err).Error("could not post message")
	}
}

func (t *Table) directMessage(ctx context.Context, playerID, text string) {
	if err := t.messenger.DirectMessage(ctx, playerID, text); err != nil {
		t.logger().WithError(err).WithField("playerID", playerID).Error("could not send direct message")
	}
}

func (t *Table) lobbyText() string {
	var sb strings.Builder
	sb.WriteString("**Poker game forming!** Use `/poker join` to take a seat.\n\n")
	fmt.Fprintf(&sb, "**Players at the table (%d/%d):**\n", len(t.players), t.opts.MaxPlayers)
	for i, p := range t.players {
		fmt.Fprintf(&sb, "%d. %s - $%d\n", i+1, p.Name, p.Stack())
	}

	sb.WriteString("\nUse `/poker start` when everyone is ready!")
	return sb.String()
}

func (t *Table) updateLobby(ctx context.Context) {
	text := t.lobbyText()
	if t.lobbyMessageID == "" {
		id, err := t.messenger.Post(ctx, t.ChannelID, text)
		if err != nil {
			t.logger().WithError(err).Error("could not post lobby")
			return
		}

		t.lobbyMessageID = id
		return
	}

	if err := t.messenger.Edit(ctx, t.ChannelID, t.lobbyMessageID, text); err != nil {
		t.logger().WithError(err).Error("could not update lobby")
	}
}

// render replaces each "{}" in the message with the name of the matching player
func (t *Table) render(msg *holdem.LogMessage) string {
	text := msg.Message
	for _, id := range msg.PlayerIDs {
		name, ok := t.names[id]
		if !ok {
			name = id
		}

		text = strings.Replace(text, "{}", name, 1)
	}

	return text
}

// TableState is the public view of a table
type TableState struct {
	ChannelID string        `json:"channelId"`
	CreatorID string        `json:"creatorId"`
	Status    string        `json:"status"`
	Players   []PlayerState `json:"players"`
	Waitlist  []PlayerState `json:"waitlist"`
	Dealer    string        `json:"dealer,omitempty"`
	HandCount int           `json:"handCount"`
	Rake      int           `json:"rake"`
	Hand      *holdem.State `json:"hand,omitempty"`
	Options   Options       `json:"options"`
}

// State returns the public view of the table. Hole cards are never included.
func (t *Table) State() *TableState {
	s := &TableState{
		ChannelID: t.ChannelID,
		CreatorID: t.CreatorID,
		Status:    t.status.Current(),
		Players:   make([]PlayerState, len(t.players)),
		Waitlist:  make([]PlayerState, len(t.waitlist)),
		HandCount: t.handCount,
		Rake:      t.Rake,
		Options:   t.opts,
	}

	for i, p := range t.players {
		s.Players[i] = PlayerState{ID: p.ID(), Name: p.Name, Stack: p.Stack(), BuyIn: p.BuyIn, Seat: i, Leaving: t.leaving[p.ID()]}
	}

	for i, p := range t.waitlist {
		s.Waitlist[i] = PlayerState{ID: p.ID(), Name: p.Name, Stack: p.Stack(), BuyIn: p.BuyIn, Seat: -1}
	}

	if t.handCount > 0 && t.dealer >= 0 && t.dealer < len(t.players) {
		s.Dealer = t.players[t.dealer].ID()
	}

	if h := t.currentOrLastHand(); h != nil {
		state := h.State()
		s.Hand = &state
	}

	return s
}

func (t *Table) currentOrLastHand() *holdem.Hand {
	if t.hand != nil {
		return t.hand
	}

	return t.lastHand
}
