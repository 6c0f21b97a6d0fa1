package history

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tablepoker-server/pkg/deck"
)

// Postgres stores records in the hands and hands_players tables
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres recorder
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Record inserts the hand and every participant in a single transaction
func (p *Postgres) Record(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	commit := false
	defer func() {
		if commit {
			return
		}

		if err := tx.Rollback(); err != nil {
			logrus.WithError(err).Error("could not rollback transaction")
		}
	}()

	const query = `
INSERT INTO hands (id, channel_id, number, pot, remainder, aborted, community, data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created`
	row := tx.QueryRowContext(ctx, query, rec.HandID, rec.ChannelID, rec.Number, rec.Pot, rec.Remainder,
		rec.Aborted, deck.CardsToString(rec.Community), data)
	if err := row.Scan(&rec.Created); err != nil {
		return errors.Wrap(err, "could not insert hand")
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO hands_players (hand_id, player_id, payout, net, winner)
VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, player := range rec.Players {
		if _, err := stmt.ExecContext(ctx, rec.HandID, player.PlayerID, player.Payout, player.Net, player.Winner); err != nil {
			return errors.Wrapf(err, "could not insert player %s", player.PlayerID)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	commit = true
	return nil
}

// Hands returns the newest records for the channel first
func (p *Postgres) Hands(ctx context.Context, channelID string, limit int) ([]*Record, error) {
	const query = `
SELECT data, created
FROM hands
WHERE channel_id = $1
ORDER BY created DESC
LIMIT $2`
	rows, err := p.db.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*Record, 0)
	for rows.Next() {
		var data []byte
		var rec Record
		if err := rows.Scan(&data, &rec.Created); err != nil {
			return nil, err
		}

		created := rec.Created
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}

		rec.Created = created
		records = append(records, &rec)
	}

	return records, rows.Err()
}
