package holdem

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tablepoker-server/pkg/deck"
)

// LogMessage describes something that happened during the hand
// Each "{}" in Message is a placeholder for the player in the same position of PlayerIDs.
type LogMessage struct {
	UUID      string    `json:"uuid"`
	PlayerIDs []string  `json:"playerIds"`
	Cards     deck.Hand `json:"cards,omitempty"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

func newLogMessage(playerIDs []string, cards deck.Hand, format string, a ...interface{}) *LogMessage {
	return &LogMessage{
		UUID:      uuid.New().String(),
		PlayerIDs: playerIDs,
		Cards:     cards,
		Message:   fmt.Sprintf(format, a...),
		Time:      time.Now(),
	}
}

func (h *Hand) logf(format string, a ...interface{}) {
	h.logs = append(h.logs, newLogMessage(nil, nil, format, a...))
}

func (h *Hand) logPlayer(playerID string, format string, a ...interface{}) {
	h.logs = append(h.logs, newLogMessage([]string{playerID}, nil, "{} "+format, a...))
}

func (h *Hand) logCards(cards deck.Hand, format string, a ...interface{}) {
	h.logs = append(h.logs, newLogMessage(nil, cards, format, a...))
}

// DrainLogs returns the log messages written since the last call
func (h *Hand) DrainLogs() []*LogMessage {
	logs := h.logs
	h.logs = nil
	return logs
}
