package history

import (
	"context"
	"time"

	"tablepoker-server/pkg/deck"
	"tablepoker-server/pkg/holdem"
)

// Recorder stores completed hands
// Records are append-only and are never used to resume a hand.
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
	Hands(ctx context.Context, channelID string, limit int) ([]*Record, error)
}

// Record is a completed hand
type Record struct {
	HandID    string                `json:"handId"`
	ChannelID string                `json:"channelId"`
	Number    int                   `json:"number"`
	Pot       int                   `json:"pot"`
	Remainder int                   `json:"remainder"`
	Aborted   bool                  `json:"aborted"`
	Community deck.Hand             `json:"community"`
	Players   []PlayerRecord        `json:"players"`
	Result    *holdem.Result        `json:"result,omitempty"`
	Log       []*holdem.LogMessage  `json:"log,omitempty"`
	Created   time.Time             `json:"created"`
}

// PlayerRecord is one participant's outcome
type PlayerRecord struct {
	PlayerID string `json:"playerId"`
	Payout   int    `json:"payout"`
	// Net is the payout less everything the player put in
	Net    int  `json:"net"`
	Winner bool `json:"winner"`
}

// NewRecord builds a record from a completed hand
func NewRecord(channelID string, h *holdem.Hand, log []*holdem.LogMessage) *Record {
	state := h.State()
	result := h.Result()

	rec := &Record{
		HandID:    h.ID,
		ChannelID: channelID,
		Number:    h.Number,
		Community: state.Community,
		Players:   make([]PlayerRecord, len(state.Participants)),
		Result:    result,
		Log:       log,
		Created:   time.Now(),
	}

	winners := make(map[string]bool)
	payouts := make(map[string]int)
	if result != nil {
		rec.Pot = result.Pot
		rec.Remainder = result.Remainder
		rec.Aborted = result.Aborted
		payouts = result.Payouts
		for _, id := range result.Winners {
			winners[id] = true
		}
	}

	for i, p := range state.Participants {
		payout := payouts[p.PlayerID]
		rec.Players[i] = PlayerRecord{
			PlayerID: p.PlayerID,
			Payout:   payout,
			Net:      payout - p.Contributed,
			Winner:   winners[p.PlayerID],
		}
	}

	return rec
}
