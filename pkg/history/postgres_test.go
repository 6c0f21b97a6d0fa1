package history

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN is not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	p := NewPostgres(db)
	channelID := uuid.New().String()

	h := foldedHand(t)
	rec := NewRecord(channelID, h, h.DrainLogs())
	require.NoError(t, p.Record(cbg, rec))
	assert.False(t, rec.Created.IsZero())

	records, err := p.Hands(cbg, channelID, 10)
	require.NoError(t, err)
	if assert.Len(t, records, 1) {
		assert.Equal(t, h.ID, records[0].HandID)
		assert.Equal(t, 150, records[0].Pot)
		assert.Len(t, records[0].Players, 2)
	}

	// a hand is only recorded once
	assert.Error(t, p.Record(cbg, rec))
}
