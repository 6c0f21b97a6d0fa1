package room

import (
	"sync/atomic"

	"github.com/coder/quartz"
)

// turnTimer is the countdown for one player's turn
// The real action and the expiry both claim the turn before doing anything. Only one can win.
type turnTimer struct {
	handNumber int
	playerID   string
	resolved   atomic.Bool
	timer      *quartz.Timer
}

func newTurnTimer(handNumber int, playerID string) *turnTimer {
	return &turnTimer{
		handNumber: handNumber,
		playerID:   playerID,
	}
}

// claim marks the turn resolved, returning false if it already was
func (t *turnTimer) claim() bool {
	return t.resolved.CompareAndSwap(false, true)
}

// release hands the turn back after a rejected action
func (t *turnTimer) release() {
	t.resolved.Store(false)
}

func (t *turnTimer) isResolved() bool {
	return t.resolved.Load()
}

func (t *turnTimer) stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

// isFor returns true if the timer belongs to the player's turn in the hand
func (t *turnTimer) isFor(handNumber int, playerID string) bool {
	return t != nil && t.handNumber == handNumber && t.playerID == playerID
}
