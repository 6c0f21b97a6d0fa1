package room

import (
	"context"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepoker-server/pkg/deck"
	"tablepoker-server/pkg/history"
	"tablepoker-server/pkg/holdem"
	"tablepoker-server/pkg/ledger"
)

const testChannel = "c1"

type harness struct {
	t         *testing.T
	ctx       context.Context
	clock     *quartz.Mock
	ledger    *ledger.Memory
	messenger *fakeMessenger
	recorder  *history.Memory
	pitBoss   *PitBoss
}

func newHarness(t *testing.T, m Messenger, fake *fakeMessenger) *harness {
	opts := DefaultOptions()
	opts.AdminIDs = []string{"admin"}

	h := &harness{
		t:         t,
		ctx:       context.Background(),
		clock:     quartz.NewMock(t),
		ledger:    ledger.NewMemory(0),
		messenger: fake,
		recorder:  history.NewMemory(),
	}

	for _, id := range []string{"p1", "p2", "p3"} {
		h.ledger.SetBalance(id, 1000)
	}

	h.pitBoss = NewPitBoss(opts, h.ledger, m, h.clock)
	h.pitBoss.SetRecorder(h.recorder)
	t.Cleanup(func() {
		h.pitBoss.Shutdown(context.Background())
	})

	return h
}

func newTestHarness(t *testing.T) *harness {
	m := newFakeMessenger()
	return newHarness(t, m, m)
}

func (h *harness) stackDeck(cards string) {
	h.pitBoss.SetDeckFactory(func() *deck.Deck {
		d := deck.New()
		d.SetGenerator(deck.NewStackedGenerator(deck.CardsFromString(cards)...))
		return d
	})
}

func (h *harness) join(playerID, name string) {
	_, err := h.pitBoss.Join(h.ctx, testChannel, playerID, name)
	require.NoError(h.t, err)
}

func (h *harness) start(playerID string) {
	_, err := h.pitBoss.Start(h.ctx, testChannel, playerID)
	require.NoError(h.t, err)
}

func (h *harness) act(playerID string, action holdem.Action, amount int) error {
	_, err := h.pitBoss.Act(h.ctx, testChannel, playerID, action, amount)
	return err
}

// advance fires the next timer and waits for the work it queued on the table
func (h *harness) advance() {
	_, w := h.clock.AdvanceNext()
	w.MustWait(h.ctx)
	h.sync()
}

// sync waits for everything already queued on the table's run loop
func (h *harness) sync() {
	if d, ok := h.pitBoss.dealer(testChannel); ok {
		_ = d.exec(h.ctx, func() {})
	}
}

func (h *harness) state() *TableState {
	s, err := h.pitBoss.State(h.ctx, testChannel)
	require.NoError(h.t, err)
	return s
}

func (h *harness) balance(playerID string) int {
	balance, err := h.ledger.GetBalance(h.ctx, playerID)
	require.NoError(h.t, err)
	return balance
}

func TestPitBoss_Join(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	msg, err := h.pitBoss.Join(h.ctx, testChannel, "p1", "Alice")
	a.NoError(err)
	a.Equal("You joined the table with $1000! (1/8 players)", msg)
	a.True(h.messenger.posted("1. Alice - $1000"))

	h.join("p2", "Bob")
	a.Equal(1, h.messenger.edits)

	_, err = h.pitBoss.Join(h.ctx, testChannel, "p1", "Alice")
	a.Equal(ErrAlreadyJoined, err)

	_, err = h.pitBoss.Join(h.ctx, testChannel, "broke", "Eve")
	a.EqualError(err, "you need at least $1000 to join; you have $0")
	a.True(IsUserError(err))

	s := h.state()
	a.Equal(StateWaiting, s.Status)
	a.Equal("p1", s.CreatorID)
	a.Len(s.Players, 2)
	a.Equal("Bob", s.Players[1].Name)
	a.Equal(1000, s.Players[1].BuyIn)
	a.Equal([]string{testChannel}, h.pitBoss.Tables())
}

func TestPitBoss_JoinFailureClosesEmptyTable(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	_, err := h.pitBoss.Join(h.ctx, testChannel, "broke", "Eve")
	a.Error(err)
	a.Empty(h.pitBoss.Tables())

	_, err = h.pitBoss.State(h.ctx, testChannel)
	a.Equal(ErrNoTable, err)
}

func TestPitBoss_TableFull(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)
	h.pitBoss.opts.MaxPlayers = 2

	h.join("p1", "Alice")
	h.join("p2", "Bob")

	_, err := h.pitBoss.Join(h.ctx, testChannel, "p3", "Carol")
	a.EqualError(err, "the table is full (2 players)")
}

func TestPitBoss_LeaveLobby(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	_, err := h.pitBoss.Leave(h.ctx, testChannel, "p1")
	a.Equal(ErrNoTable, err)

	h.join("p1", "Alice")
	h.join("p2", "Bob")

	msg, err := h.pitBoss.Leave(h.ctx, testChannel, "p2")
	a.NoError(err)
	a.Equal("You left the lobby.", msg)

	_, err = h.pitBoss.Leave(h.ctx, testChannel, "p2")
	a.Equal(ErrNotAtTable, err)
	a.Len(h.state().Players, 1)

	_, err = h.pitBoss.Leave(h.ctx, testChannel, "p1")
	a.NoError(err)
	a.True(h.messenger.posted("Everyone left the lobby"))
	a.Empty(h.pitBoss.Tables())

	// nothing was bought in, so nothing was settled
	a.Equal(1000, h.balance("p1"))
	a.Equal(1000, h.balance("p2"))
}

func TestPitBoss_Start(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	_, err := h.pitBoss.Start(h.ctx, testChannel, "p1")
	a.Equal(ErrNoTable, err)

	h.join("p1", "Alice")
	_, err = h.pitBoss.Start(h.ctx, testChannel, "p1")
	a.EqualError(err, "you need at least 2 players to start (currently 1)")

	h.join("p2", "Bob")
	_, err = h.pitBoss.Start(h.ctx, testChannel, "p3")
	a.Equal(ErrNotAtTable, err)

	// admins don't need a seat
	msg, err := h.pitBoss.Start(h.ctx, testChannel, "admin")
	a.NoError(err)
	a.Equal("Game started! Follow along in the poker thread.", msg)
	a.Len(h.messenger.threads, 1)
	a.True(h.messenger.posted("Players: Alice, Bob"))

	_, err = h.pitBoss.Start(h.ctx, testChannel, "p1")
	a.Equal(ErrNoLobby, err)

	// the first hand waits for the start delay
	a.Equal(ErrNoActiveHand, h.act("p1", holdem.Call, 0))
	a.True(IsUserError(ErrNoActiveHand))

	s := h.state()
	a.Equal(StateActive, s.Status)
	a.Equal(0, s.HandCount)
	a.Nil(s.Hand)
}

func TestPitBoss_AllInToTheEnd(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	// the dealer moves to Bob for the first hand, so Alice posts the small blind and acts first
	h.stackDeck("14s,2c,14h,7d,13c,9d,5h,3s,11c")
	h.join("p1", "Alice")
	h.join("p2", "Bob")
	h.start("p1")
	h.advance()

	s := h.state()
	a.Equal(1, s.HandCount)
	a.Equal("p2", s.Dealer)
	require.NotNil(t, s.Hand)
	a.Equal("p1", s.Hand.Actor)
	a.Equal(150, s.Hand.Pot)
	a.True(h.messenger.posted("Dealer: Bob. Cards dealt!"))
	a.True(h.messenger.posted("Alice, it's your turn"))
	a.Len(h.messenger.directMessages("p1"), 1)
	a.Contains(h.messenger.directMessages("p1")[0], "Hand #1: your cards are")

	a.Equal(holdem.ErrNotYourTurn, h.act("p2", holdem.Call, 0))
	a.Equal(holdem.ErrNotInHand, h.act("p3", holdem.Call, 0))

	a.NoError(h.act("p1", holdem.AllIn, 0))
	a.NoError(h.act("p2", holdem.Call, 0))

	// Bob is busted, leaving too few players to go on
	a.True(h.messenger.posted("Alice wins $2000 with"))
	a.True(h.messenger.posted("Bob is out of chips!"))
	a.True(h.messenger.posted("Final standings"))
	a.Empty(h.pitBoss.Tables())

	a.Equal(2000, h.balance("p1"))
	a.Equal(0, h.balance("p2"))

	hands, err := h.pitBoss.Hands(h.ctx, testChannel, 10)
	a.NoError(err)
	require.Len(t, hands, 1)
	a.Equal(2000, hands[0].Pot)
	a.Equal("13c,9d,5h,3s,11c", deck.CardsToString(hands[0].Community))
}

func TestPitBoss_AutoFold(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	// Bob deals, Carol posts the small blind, Alice the big blind, and Bob acts first
	h.join("p1", "Alice")
	h.join("p2", "Bob")
	h.join("p3", "Carol")
	h.start("p1")
	h.advance()
	a.Equal("p2", h.state().Hand.Actor)

	// a rejected action keeps the turn and the timer
	err := h.act("p2", holdem.Check, 0)
	a.True(holdem.IsParticipantError(err))
	a.Equal("p2", h.state().Hand.Actor)

	h.advance()
	a.True(h.messenger.posted("Bob ran out of time."))

	// the late action is rejected rather than applied a second time
	a.Equal(holdem.ErrNotYourTurn, h.act("p2", holdem.Call, 0))

	s := h.state()
	a.Equal("p3", s.Hand.Actor)
	a.Equal(150, s.Hand.Pot)
	for _, p := range s.Hand.Participants {
		a.Equal(p.PlayerID == "p2", p.Folded, p.PlayerID)
	}

	// every turn gets its own timer
	h.advance()
	a.True(h.messenger.posted("Carol ran out of time."))

	s = h.state()
	require.NotNil(t, s.Hand.Result)
	a.True(s.Hand.Result.Uncontested)
	a.Equal([]string{"p1"}, s.Hand.Result.Winners)
	a.Equal(1050, s.Players[0].Stack)
	a.Equal(1000, s.Players[1].Stack)
	a.Equal(950, s.Players[2].Stack)

	_, err = h.pitBoss.End(h.ctx, testChannel, "p2")
	a.Equal(ErrNotAdmin, err)

	msg, err := h.pitBoss.End(h.ctx, testChannel, "p1")
	a.NoError(err)
	a.Equal("Game ended. All chips settled.", msg)
	a.Empty(h.pitBoss.Tables())

	a.Equal(1050, h.balance("p1"))
	a.Equal(1000, h.balance("p2"))
	a.Equal(950, h.balance("p3"))
}

func TestPitBoss_EndRefundsHandInProgress(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	h.join("p1", "Alice")
	h.join("p2", "Bob")
	h.start("p1")
	h.advance()
	a.NoError(h.act("p1", holdem.Raise, 200))

	_, err := h.pitBoss.End(h.ctx, testChannel, "admin")
	a.NoError(err)

	a.Equal(1000, h.balance("p1"))
	a.Equal(1000, h.balance("p2"))

	hands, err := h.pitBoss.Hands(h.ctx, testChannel, 10)
	a.NoError(err)
	require.Len(t, hands, 1)
	a.True(hands[0].Aborted)
}

func TestPitBoss_WaitlistAndLeaving(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	h.join("p1", "Alice")
	h.join("p2", "Bob")
	h.start("p1")
	h.advance()

	msg, err := h.pitBoss.Join(h.ctx, testChannel, "p3", "Carol")
	a.NoError(err)
	a.Equal("You will join at the next hand with $1000!", msg)
	a.Len(h.state().Waitlist, 1)

	msg, err = h.pitBoss.Leave(h.ctx, testChannel, "p1")
	a.NoError(err)
	a.Equal("You'll leave after this hand. Your chips will be paid out.", msg)
	_, err = h.pitBoss.Leave(h.ctx, testChannel, "p1")
	a.Equal(ErrAlreadyLeaving, err)
	a.True(h.state().Players[0].Leaving)

	// Alice is still in the hand until it ends
	a.NoError(h.act("p1", holdem.Fold, 0))
	h.advance()

	a.True(h.messenger.posted("Carol joined the table with $1000!"))
	a.True(h.messenger.posted("Alice left with $950 (-$50)."))
	a.Equal(950, h.balance("p1"))

	s := h.state()
	a.Equal(2, s.HandCount)
	a.Empty(s.Waitlist)
	require.Len(t, s.Players, 2)
	a.Equal("p2", s.Players[0].ID)
	a.Equal("p3", s.Players[1].ID)
	a.Equal("p3", s.Dealer)
	a.Equal("p2", s.Hand.Actor)
}

func TestPitBoss_LeaveWaitlist(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	h.join("p1", "Alice")
	h.join("p2", "Bob")
	h.start("p1")
	h.join("p3", "Carol")

	msg, err := h.pitBoss.Leave(h.ctx, testChannel, "p3")
	a.NoError(err)
	a.Equal("You left the waitlist.", msg)
	a.Empty(h.state().Waitlist)
}

func TestPitBoss_ActionPrompter(t *testing.T) {
	a := assert.New(t)
	fake := newFakeMessenger()
	m := &promptingMessenger{fakeMessenger: fake}
	h := newHarness(t, m, fake)

	h.join("p1", "Alice")
	h.join("p2", "Bob")
	h.start("p1")
	h.advance()

	prompt, ok := m.lastPrompt()
	require.True(t, ok)
	a.Equal("p1", prompt.PlayerID)
	a.Equal("Alice", prompt.Name)
	a.Equal(1, prompt.HandNumber)
	a.Equal(50, prompt.ToCall)
	a.Equal([]int{100, 200, 400}, prompt.Raises)
	a.False(fake.posted("it's your turn"))
}

func TestPitBoss_Shutdown(t *testing.T) {
	a := assert.New(t)
	h := newTestHarness(t)

	h.join("p1", "Alice")
	h.join("p2", "Bob")
	h.start("p1")
	h.advance()
	a.NoError(h.act("p1", holdem.AllIn, 0))

	h.pitBoss.Shutdown(h.ctx)
	a.Empty(h.pitBoss.Tables())
	a.True(h.messenger.posted("The server is restarting"))
	a.Equal(1000, h.balance("p1"))
	a.Equal(1000, h.balance("p2"))
}
