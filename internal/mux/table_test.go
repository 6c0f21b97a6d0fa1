package mux

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepoker-server/pkg/history"
	"tablepoker-server/pkg/room"
)

func (ts *testServer) advance(t *testing.T) {
	_, w := ts.clock.AdvanceNext()
	w.MustWait(cbg)

	// the table's run loop is FIFO; a state read waits for whatever the timer queued
	_, _ = ts.pitBoss.State(cbg, "c1")
}

func TestTableFlow(t *testing.T) {
	a := assert.New(t)
	ts := newTestServer(t)
	p1, p2, p3 := token(t, "p1"), token(t, "p2"), token(t, "p3")

	var errObj errorResponse
	assertGet(t, ts.Server, "/table/c1", &errObj, http.StatusNotFound, p1)
	a.Equal("there is no poker table in this channel", errObj.Message)

	var msg messageResponse
	assertPost(t, ts.Server, "/table/c1/join", postJoinPayload{Name: "Alice"}, &msg, http.StatusOK, p1)
	a.Equal("You joined the table with $1000! (1/8 players)", msg.Message)

	// the name defaults to the player ID
	assertPost(t, ts.Server, "/table/c1/join", nil, &msg, http.StatusOK, p2)
	assertPost(t, ts.Server, "/table/c1/join", nil, &errObj, http.StatusBadRequest, p2)
	a.Equal("you're already in the game or lobby", errObj.Message)

	var tables []string
	assertGet(t, ts.Server, "/table", &tables, http.StatusOK, p3)
	a.Equal([]string{"c1"}, tables)

	var state room.TableState
	assertGet(t, ts.Server, "/table/c1", &state, http.StatusOK, p3)
	a.Equal(room.StateWaiting, state.Status)
	require.Len(t, state.Players, 2)
	a.Equal("Alice", state.Players[0].Name)
	a.Equal("p2", state.Players[1].Name)

	assertPost(t, ts.Server, "/table/c1/start", nil, &errObj, http.StatusBadRequest, p3)
	a.Equal("you're not in the game", errObj.Message)
	assertPost(t, ts.Server, "/table/c1/start", nil, &msg, http.StatusOK, p1)

	assertPost(t, ts.Server, "/table/c1/action", postActionPayload{Action: "call"}, &errObj, http.StatusBadRequest, p1)
	a.Equal("there is no hand in progress", errObj.Message)
	assertPost(t, ts.Server, "/table/c1/action", postActionPayload{Action: "bogus"}, &errObj, http.StatusBadRequest, p1)
	a.Equal("unknown action for identifier: bogus", errObj.Message)

	ts.advance(t)

	assertGet(t, ts.Server, "/table/c1", &state, http.StatusOK, p1)
	require.NotNil(t, state.Hand)
	a.Equal("p1", state.Hand.Actor)

	assertPost(t, ts.Server, "/table/c1/action", postActionPayload{Action: "check"}, &errObj, http.StatusBadRequest, p1)
	a.Equal("you cannot check with an active bet", errObj.Message)
	assertPost(t, ts.Server, "/table/c1/action", postActionPayload{Action: "FOLD"}, &msg, http.StatusOK, p1)
	a.Equal("Action recorded!", msg.Message)

	var hands []*history.Record
	assertGet(t, ts.Server, "/table/c1/hands?rows=5", &hands, http.StatusOK, p3)
	require.Len(t, hands, 1)
	a.Equal(150, hands[0].Pot)
	assertGet(t, ts.Server, "/table/c1/hands?rows=0", &errObj, http.StatusBadRequest, p3)

	assertPost(t, ts.Server, "/table/c1/end", nil, &errObj, http.StatusBadRequest, p2)
	assertPost(t, ts.Server, "/table/c1/end", nil, &msg, http.StatusOK, p1)
	a.Equal("Game ended. All chips settled.", msg.Message)

	balance, _ := ts.ledger.GetBalance(cbg, "p1")
	a.Equal(950, balance)
	balance, _ = ts.ledger.GetBalance(cbg, "p2")
	a.Equal(1050, balance)

	assertPost(t, ts.Server, "/table/c1/leave", nil, &errObj, http.StatusNotFound, p1)
}

func TestTableJoin_BadRequest(t *testing.T) {
	ts := newTestServer(t)
	p1 := token(t, "p1")

	var errObj errorResponse
	assertPost(t, ts.Server, "/table/c1/join", "{", &errObj, http.StatusBadRequest, p1)
	assertPost(t, ts.Server, "/table/c1/join", postJoinPayload{Name: "This name is far too long to fit on the table"}, &errObj, http.StatusBadRequest, p1)
	assert.Equal(t, "name cannot be longer than 40 characters", errObj.Message)
	assert.Empty(t, ts.pitBoss.Tables())
}
