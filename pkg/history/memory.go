package history

import (
	"context"
	"sync"
)

// Memory keeps records in process
type Memory struct {
	mu      sync.Mutex
	records []*Record
}

// NewMemory returns an empty in-memory recorder
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends the record
func (m *Memory) Record(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, rec)
	return nil
}

// Hands returns the newest records for the channel first
func (m *Memory) Hands(_ context.Context, channelID string, limit int) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]*Record, 0)
	for i := len(m.records) - 1; i >= 0 && len(records) < limit; i-- {
		if m.records[i].ChannelID == channelID {
			records = append(records, m.records[i])
		}
	}

	return records, nil
}
