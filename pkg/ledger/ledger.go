package ledger

import (
	"context"
)

// Ledger holds each player's chip balance away from the table
// Balances never go below zero: an adjustment that would overdraw the balance leaves it at zero.
type Ledger interface {
	// GetBalance returns the player's balance. Unknown players have a balance of zero.
	GetBalance(ctx context.Context, playerID string) (int, error)

	// AdjustBalance atomically adds delta to the balance and returns the new balance
	AdjustBalance(ctx context.Context, playerID string, delta int) (int, error)
}

func clamp(balance int) int {
	if balance < 0 {
		return 0
	}

	return balance
}
