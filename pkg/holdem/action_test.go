package holdem

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionFromString(t *testing.T) {
	a := assert.New(t)

	for _, s := range []string{"fold", "check", "call", "raise", "allin"} {
		action, err := ActionFromString(s)
		a.NoError(err)
		a.Equal(s, string(action))
		a.True(action.IsValid())
	}

	action, err := ActionFromString("bet")
	a.EqualError(err, "unknown action for identifier: bet")
	a.Equal(Action(""), action)
}

func TestAction_String(t *testing.T) {
	a := assert.New(t)
	a.Equal("All-in", AllIn.String())
	a.Equal("Fold", Fold.String())
	a.Panics(func() {
		_ = Action("nope").String()
	})
}

func TestAction_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Raise)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":"raise","name":"Raise"}`, string(b))
}

func TestAction_LogMessage(t *testing.T) {
	a := assert.New(t)
	a.Equal("folded", Fold.LogMessage(0))
	a.Equal("checked", Check.LogMessage(0))
	a.Equal("called $100", Call.LogMessage(100))
	a.Equal("raised to $300", Raise.LogMessage(300))
	a.Equal("went all-in for $950", AllIn.LogMessage(950))
}

func TestPhase(t *testing.T) {
	a := assert.New(t)
	a.Equal("preflop", PhasePreFlop.String())
	a.Equal("showdown", PhaseShowdown.String())
	a.Equal(3, PhaseFlop.communityCards())
	a.Equal(1, PhaseRiver.communityCards())
	a.Equal(0, PhaseShowdown.communityCards())

	b, err := json.Marshal(PhaseTurn)
	a.NoError(err)
	a.JSONEq(`{"id":2,"name":"turn"}`, string(b))
}
