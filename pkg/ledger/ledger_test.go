package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

// testLedger runs the behavior every Ledger must share
func testLedger(t *testing.T, l Ledger) {
	t.Helper()
	a := assert.New(t)

	playerID := uuid.New().String()

	balance, err := l.GetBalance(cbg, playerID)
	require.NoError(t, err)
	a.Equal(0, balance)

	balance, err = l.AdjustBalance(cbg, playerID, 1500)
	require.NoError(t, err)
	a.Equal(1500, balance)

	balance, err = l.AdjustBalance(cbg, playerID, -400)
	require.NoError(t, err)
	a.Equal(1100, balance)

	balance, err = l.GetBalance(cbg, playerID)
	require.NoError(t, err)
	a.Equal(1100, balance)

	// overdrawing clamps at zero
	balance, err = l.AdjustBalance(cbg, playerID, -5000)
	require.NoError(t, err)
	a.Equal(0, balance)

	// a negative delta for an unknown player stays at zero
	balance, err = l.AdjustBalance(cbg, uuid.New().String(), -100)
	require.NoError(t, err)
	a.Equal(0, balance)

	// concurrent adjustments are atomic
	other := uuid.New().String()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.AdjustBalance(cbg, other, 10)
			a.NoError(err)
		}()
	}
	wg.Wait()

	balance, err = l.GetBalance(cbg, other)
	require.NoError(t, err)
	a.Equal(200, balance)
}

func TestMemory(t *testing.T) {
	testLedger(t, NewMemory(0))
}

func TestMemory_Starter(t *testing.T) {
	m := NewMemory(1000)

	balance, err := m.GetBalance(cbg, "new")
	assert.NoError(t, err)
	assert.Equal(t, 1000, balance)

	balance, err = m.AdjustBalance(cbg, "new", -250)
	assert.NoError(t, err)
	assert.Equal(t, 750, balance)

	m.SetBalance("set", -10)
	balance, _ = m.GetBalance(cbg, "set")
	assert.Equal(t, 0, balance)
}
