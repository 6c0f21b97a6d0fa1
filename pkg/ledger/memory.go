package ledger

import (
	"context"
	"sync"
)

// Memory is a ledger that lives only as long as the process
type Memory struct {
	mu       sync.Mutex
	balances map[string]int
	starter  int
}

// NewMemory returns an in-memory ledger
// Players the ledger has never seen start with the starter balance.
func NewMemory(starter int) *Memory {
	return &Memory{
		balances: make(map[string]int),
		starter:  clamp(starter),
	}
}

func (m *Memory) balance(playerID string) int {
	if balance, ok := m.balances[playerID]; ok {
		return balance
	}

	return m.starter
}

// GetBalance returns the player's balance
func (m *Memory) GetBalance(_ context.Context, playerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.balance(playerID), nil
}

// AdjustBalance adds delta to the player's balance
func (m *Memory) AdjustBalance(_ context.Context, playerID string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := clamp(m.balance(playerID) + delta)
	m.balances[playerID] = balance

	return balance, nil
}

// SetBalance overwrites the player's balance
func (m *Memory) SetBalance(playerID string, balance int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[playerID] = clamp(balance)
}
