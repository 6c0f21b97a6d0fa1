package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tablepoker-server/internal/metrics"
	"tablepoker-server/pkg/history"
	"tablepoker-server/pkg/holdem"
)

// scheduleDeal deals the next hand once the delay has passed
func (t *Table) scheduleDeal(delay time.Duration) {
	if t.nextDeal != nil {
		t.nextDeal.Stop()
	}

	t.nextDeal = t.clock.AfterFunc(delay, func() {
		t.enqueue(func() {
			t.nextDeal = nil
			t.dealHand(context.Background())
		})
	})
}

// seatWaitlist seats waiting players who can still cover the minimum buy-in
func (t *Table) seatWaitlist(ctx context.Context) {
	waitlist := t.waitlist
	t.waitlist = nil

	for _, p := range waitlist {
		balance, err := t.ledger.GetBalance(ctx, p.ID())
		if err != nil {
			metrics.Metrics.LedgerFailure()
			t.logger().WithError(err).WithField("playerID", p.ID()).Error("could not get balance")
			continue
		}

		if balance < t.opts.MinBuyIn() {
			t.post(ctx, fmt.Sprintf("%s can't join: at least $%d is needed.", p.Name, t.opts.MinBuyIn()))
			continue
		}

		t.seat(newPlayer(p.ID(), p.Name, balance))
		t.post(ctx, fmt.Sprintf("%s joined the table with $%d!", p.Name, balance))
	}
}

// cashOutLeavers pays out and removes everyone who asked to leave
func (t *Table) cashOutLeavers(ctx context.Context) {
	for i := 0; i < len(t.players); {
		p := t.players[i]
		if !t.leaving[p.ID()] {
			i++
			continue
		}

		t.unseat(i)
		net := t.settle(ctx, p)
		t.post(ctx, fmt.Sprintf("%s left with $%d (%s).", p.Name, p.Stack(), describeNet(net)))
		if i <= t.dealer {
			t.dealer--
		}
	}
}

// dealHand runs the between-hands bookkeeping and deals a new hand
func (t *Table) dealHand(ctx context.Context) {
	if !t.status.Is(StateActive) || t.hand != nil {
		return
	}

	t.seatWaitlist(ctx)
	t.cashOutLeavers(ctx)

	if len(t.players) < t.opts.MinPlayers {
		t.post(ctx, "Not enough players to continue.")
		t.settleAll(ctx)
		t.close(StateEnded)
		return
	}

	t.handCount++
	t.dealer = (t.dealer + 1) % len(t.players)

	players := make([]holdem.Player, len(t.players))
	for i, p := range t.players {
		players[i] = p
	}

	hand, err := holdem.NewHand(t.handCount, t.opts.Options, players, t.dealer, t.newDeck())
	if err != nil {
		t.fail(ctx, err)
		return
	}

	metrics.Metrics.HandDealt()
	t.hand = hand
	t.handLog = nil

	t.flushLogs(ctx)
	t.post(ctx, fmt.Sprintf("Dealer: %s. Cards dealt! Check your DMs.", t.players[t.dealer].Name))

	for _, id := range hand.PlayerIDs() {
		cards, _ := hand.HoleCards(id)
		t.directMessage(ctx, id, fmt.Sprintf("Hand #%d: your cards are %s", hand.Number, cards))
	}

	t.afterAction(ctx)
}

// Act applies a player's action to the hand in progress
func (t *Table) Act(ctx context.Context, playerID string, action holdem.Action, amount int) (string, error) {
	if t.hand == nil {
		t.logger().WithField("playerID", playerID).WithError(ErrNoActiveHand).Error("action without a hand")
		return "", ErrNoActiveHand
	}

	if !t.turn.isFor(t.hand.Number, playerID) {
		// let the hand decide between "not in hand" and "not your turn"
		if _, ok := t.hand.HoleCards(playerID); !ok {
			return "", holdem.ErrNotInHand
		}

		return "", holdem.ErrNotYourTurn
	}

	if err := t.apply(ctx, t.turn, action, amount, false); err != nil {
		return "", err
	}

	return "Action recorded!", nil
}

// expire folds the player whose timer ran out
func (t *Table) expire(ctx context.Context, turn *turnTimer) {
	if t.hand == nil || turn != t.turn || !turn.isFor(t.hand.Number, turn.playerID) {
		return
	}

	if err := t.apply(ctx, turn, holdem.Fold, 0, true); err != nil && !holdem.IsParticipantError(err) {
		t.logger().WithError(err).Error("could not fold timed out player")
	}
}

// apply is the single path every action takes into the hand
func (t *Table) apply(ctx context.Context, turn *turnTimer, action holdem.Action, amount int, timedOut bool) error {
	if !turn.claim() {
		return holdem.ErrNotYourTurn
	}

	if err := t.hand.Act(turn.playerID, action, amount); err != nil {
		if holdem.IsParticipantError(err) {
			turn.release()
			return err
		}

		t.fail(ctx, err)
		return err
	}

	turn.stop()
	t.turn = nil

	if timedOut {
		metrics.Metrics.AutoFold()
		t.post(ctx, fmt.Sprintf("%s ran out of time.", t.names[turn.playerID]))
	} else {
		metrics.Metrics.Action(string(action))
	}

	t.afterAction(ctx)
	return nil
}

// afterAction reports what happened, then prompts the next player or wraps up the hand
func (t *Table) afterAction(ctx context.Context) {
	t.flushLogs(ctx)

	if t.hand.IsComplete() {
		t.finishHand(ctx)
		return
	}

	prompt, ok := t.hand.Pending()
	if !ok {
		t.fail(ctx, fmt.Errorf("hand #%d is waiting on nobody", t.hand.Number))
		return
	}

	t.prompt(ctx, prompt)
}

// prompt arms the turn timer and asks the player to act
func (t *Table) prompt(ctx context.Context, p holdem.Prompt) {
	if t.turn != nil {
		t.turn.stop()
	}

	turn := newTurnTimer(t.hand.Number, p.PlayerID)
	turn.timer = t.clock.AfterFunc(t.opts.ActionTimeout, func() {
		t.enqueue(func() {
			t.expire(context.Background(), turn)
		})
	})
	t.turn = turn

	tp := newTurnPrompt(p, t.names[p.PlayerID], t.hand.Number, t.opts.ActionTimeout)
	if prompter, ok := t.messenger.(ActionPrompter); ok {
		if err := prompter.PromptAction(ctx, t.channel(), tp); err != nil {
			t.logger().WithError(err).WithField("playerID", p.PlayerID).Error("could not prompt player")
		}

		return
	}

	t.post(ctx, tp.String())
}

func (t *Table) flushLogs(ctx context.Context) {
	logs := t.hand.DrainLogs()
	if len(logs) == 0 {
		return
	}

	t.handLog = append(t.handLog, logs...)
	lines := make([]string, len(logs))
	for i, msg := range logs {
		lines[i] = t.render(msg)
	}

	t.post(ctx, strings.Join(lines, "\n"))
}

// finishLog drains the hand's log without announcing it
func (t *Table) finishLog() {
	t.handLog = append(t.handLog, t.hand.DrainLogs()...)
}

// finishHand removes busted players and deals again, or ends the table
func (t *Table) finishHand(ctx context.Context) {
	result := t.hand.Result()
	t.Rake += result.Remainder
	metrics.Metrics.HandEnded(result.Pot, result.Remainder)
	t.recordHand(ctx)

	t.lastHand = t.hand
	t.hand = nil
	t.turn = nil

	for i := 0; i < len(t.players); {
		p := t.players[i]
		if p.Stack() > 0 {
			i++
			continue
		}

		t.unseat(i)
		t.settle(ctx, p)
		t.post(ctx, fmt.Sprintf("%s is out of chips!", p.Name))
		if i <= t.dealer {
			// the button moves to whoever was left of the removed seat
			t.dealer--
		}
	}

	if len(t.players)+len(t.waitlist) < t.opts.MinPlayers {
		t.settleAll(ctx)
		t.close(StateEnded)
		return
	}

	t.scheduleDeal(t.opts.NextHandDelay)
}

// fail aborts the hand after a structural error and closes the table
func (t *Table) fail(ctx context.Context, err error) {
	t.logger().WithError(err).Error("hand aborted")
	metrics.Metrics.HandAborted()

	if t.hand != nil {
		t.hand.Abort()
		t.finishLog()
		t.recordHand(ctx)
	}

	t.post(ctx, "Something went wrong with this hand. It was cancelled and every bet was returned.")
	t.settleAll(ctx)
	t.close(StateErrored)
}

func (t *Table) recordHand(ctx context.Context) {
	if t.recorder == nil {
		return
	}

	rec := history.NewRecord(t.ChannelID, t.hand, t.handLog)
	if err := t.recorder.Record(ctx, rec); err != nil {
		t.logger().WithError(err).WithFields(logrus.Fields{"handID": rec.HandID}).Error("could not record hand")
	}
}
