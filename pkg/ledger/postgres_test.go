package ledger

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq" // driver
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

	testLedger(t, NewPostgres(db))
}
