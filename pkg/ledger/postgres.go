package ledger

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// Postgres is a ledger backed by the balances table
// Every adjustment is also written to ledger_entries by the adjust_balance() function.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres ledger
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// GetBalance returns the player's balance
func (p *Postgres) GetBalance(ctx context.Context, playerID string) (int, error) {
	const query = `SELECT balance FROM balances WHERE player_id = $1`

	var balance int
	if err := p.db.QueryRowContext(ctx, query, playerID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, errors.Wrapf(err, "could not get balance for %s", playerID)
	}

	return balance, nil
}

// AdjustBalance adds delta to the player's balance
func (p *Postgres) AdjustBalance(ctx context.Context, playerID string, delta int) (int, error) {
	const query = `SELECT adjust_balance($1, $2)`

	var balance int
	if err := p.db.QueryRowContext(ctx, query, playerID, delta).Scan(&balance); err != nil {
		return 0, errors.Wrapf(err, "could not adjust balance for %s", playerID)
	}

	return balance, nil
}
