package room

import (
	"context"
	"sync"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"

	"tablepoker-server/internal/metrics"
	"tablepoker-server/pkg/deck"
	"tablepoker-server/pkg/history"
	"tablepoker-server/pkg/holdem"
	"tablepoker-server/pkg/ledger"
)

// PitBoss keeps one dealer per chat channel
type PitBoss struct {
	opts      Options
	ledger    ledger.Ledger
	messenger Messenger
	recorder  history.Recorder
	clock     quartz.Clock
	newDeck   func() *deck.Deck

	mu      sync.RWMutex
	dealers map[string]*Dealer
}

// NewPitBoss returns a pit boss with no tables
func NewPitBoss(opts Options, l ledger.Ledger, m Messenger, clock quartz.Clock) *PitBoss {
	return &PitBoss{
		opts:      opts,
		ledger:    l,
		messenger: m,
		clock:     clock,
		newDeck:   deck.New,
		dealers:   make(map[string]*Dealer),
	}
}

// SetRecorder records every completed hand
func (p *PitBoss) SetRecorder(r history.Recorder) {
	p.recorder = r
}

// SetDeckFactory replaces how decks are made for new tables
func (p *PitBoss) SetDeckFactory(fn func() *deck.Deck) {
	p.newDeck = fn
}

// Options returns the table rules
func (p *PitBoss) Options() Options {
	return p.opts
}

func (p *PitBoss) dealer(channelID string) (*Dealer, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	d, ok := p.dealers[channelID]
	return d, ok
}

// openDealer returns the channel's dealer, opening a new table if there is none
func (p *PitBoss) openDealer(channelID, creatorID string) *Dealer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if d, ok := p.dealers[channelID]; ok {
		return d
	}

	t := NewTable(channelID, creatorID, p.opts, p.ledger, p.messenger, p.clock)
	t.recorder = p.recorder
	t.newDeck = p.newDeck

	d := NewDealer(t)
	t.onClose = func() {
		p.remove(channelID, d)
	}

	d.StartShift()
	p.dealers[channelID] = d
	metrics.Metrics.SetActiveTables(len(p.dealers))

	logrus.WithFields(logrus.Fields{"channelID": channelID, "creatorID": creatorID}).Info("opened table")
	return d
}

// remove forgets the dealer and ends its shift
// This is called from the dealer's own run loop.
func (p *PitBoss) remove(channelID string, d *Dealer) {
	p.mu.Lock()
	if p.dealers[channelID] == d {
		delete(p.dealers, channelID)
	}
	metrics.Metrics.SetActiveTables(len(p.dealers))
	p.mu.Unlock()

	d.EndShift()
	logrus.WithField("channelID", channelID).Info("closed table")
}

// run executes fn on the channel's run loop
func (p *PitBoss) run(ctx context.Context, channelID string, fn func(ctx context.Context, t *Table) (string, error)) (string, error) {
	d, ok := p.dealer(channelID)
	if !ok {
		return "", ErrNoTable
	}

	return p.runOn(ctx, d, fn)
}

func (p *PitBoss) runOn(ctx context.Context, d *Dealer, fn func(ctx context.Context, t *Table) (string, error)) (string, error) {
	var msg string
	var err error

	// side effects on the table outlive the caller
	tableCtx := context.WithoutCancel(ctx)
	if execErr := d.exec(ctx, func() {
		msg, err = fn(tableCtx, d.table)
	}); execErr != nil {
		return "", execErr
	}

	if err != nil && !IsUserError(err) {
		logrus.WithError(err).WithField("channelID", d.table.ChannelID).Error("table operation failed")
	}

	return msg, err
}

// Join seats the player at the channel's table, opening one if needed
func (p *PitBoss) Join(ctx context.Context, channelID, playerID, name string) (string, error) {
	for attempt := 0; ; attempt++ {
		d := p.openDealer(channelID, playerID)
		msg, err := p.runOn(ctx, d, func(ctx context.Context, t *Table) (string, error) {
			msg, err := t.Join(ctx, playerID, name)
			if err != nil && t.isEmpty() {
				// don't leave a table nobody could sit at
				t.close(StateEnded)
			}

			return msg, err
		})

		// the table closed while we were waiting on it; open a fresh one
		if err == ErrTableClosed && attempt < 2 {
			continue
		}

		return msg, err
	}
}

// Leave removes the player from the channel's table
func (p *PitBoss) Leave(ctx context.Context, channelID, playerID string) (string, error) {
	return p.run(ctx, channelID, func(ctx context.Context, t *Table) (string, error) {
		return t.Leave(ctx, playerID)
	})
}

// Start starts the game at the channel's table
func (p *PitBoss) Start(ctx context.Context, channelID, playerID string) (string, error) {
	return p.run(ctx, channelID, func(ctx context.Context, t *Table) (string, error) {
		return t.Start(ctx, playerID)
	})
}

// End settles and closes the channel's table
func (p *PitBoss) End(ctx context.Context, channelID, playerID string) (string, error) {
	return p.run(ctx, channelID, func(ctx context.Context, t *Table) (string, error) {
		return t.End(ctx, playerID)
	})
}

// Act submits an action for the player
func (p *PitBoss) Act(ctx context.Context, channelID, playerID string, action holdem.Action, amount int) (string, error) {
	return p.run(ctx, channelID, func(ctx context.Context, t *Table) (string, error) {
		return t.Act(ctx, playerID, action, amount)
	})
}

// State returns a snapshot of the channel's table
func (p *PitBoss) State(ctx context.Context, channelID string) (*TableState, error) {
	var state *TableState
	_, err := p.run(ctx, channelID, func(_ context.Context, t *Table) (string, error) {
		state = t.State()
		return "", nil
	})

	return state, err
}

// Hands returns recently completed hands for the channel, newest first
func (p *PitBoss) Hands(ctx context.Context, channelID string, limit int) ([]*history.Record, error) {
	if p.recorder == nil {
		return []*history.Record{}, nil
	}

	return p.recorder.Hands(ctx, channelID, limit)
}

// Tables returns the channel IDs of every open table
func (p *PitBoss) Tables() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	channels := make([]string, 0, len(p.dealers))
	for channelID := range p.dealers {
		channels = append(channels, channelID)
	}

	return channels
}

// Shutdown settles and closes every table
func (p *PitBoss) Shutdown(ctx context.Context) {
	for _, channelID := range p.Tables() {
		if _, err := p.run(ctx, channelID, func(ctx context.Context, t *Table) (string, error) {
			t.Shutdown(ctx)
			return "", nil
		}); err != nil && err != ErrTableClosed {
			logrus.WithError(err).WithField("channelID", channelID).Error("could not shut down table")
		}
	}
}
