package mux

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialFeed(t *testing.T, ts *testServer, channelID, signed string) *websocket.Conn {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/table/" + channelID + "/ws?access_token=" + url.QueryEscape(signed)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	// the subscription is in place once this arrives
	event := readEvent(t, conn, func(e *FeedEvent) bool { return true })
	require.Equal(t, EventSubscribed, event.Type)

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, match func(e *FeedEvent) bool) *FeedEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var event FeedEvent
		require.NoError(t, conn.ReadJSON(&event))
		if match(&event) {
			return &event
		}
	}
}

func TestTableWS(t *testing.T) {
	a := assert.New(t)
	ts := newTestServer(t)
	p1, p2 := token(t, "p1"), token(t, "p2")

	conn := dialFeed(t, ts, "c1", p1)

	var msg messageResponse
	assertPost(t, ts.Server, "/table/c1/join", postJoinPayload{Name: "Alice"}, &msg, http.StatusOK, p1)
	event := readEvent(t, conn, func(e *FeedEvent) bool { return e.Type == EventPost })
	a.Equal("c1", event.ChannelID)
	a.Contains(event.Text, "1. Alice - $1000")

	assertPost(t, ts.Server, "/table/c1/join", postJoinPayload{Name: "Bob"}, &msg, http.StatusOK, p2)
	event = readEvent(t, conn, func(e *FeedEvent) bool { return e.Type == EventEdit })
	a.Contains(event.Text, "2. Bob - $1000")

	assertPost(t, ts.Server, "/table/c1/start", nil, &msg, http.StatusOK, p1)
	ts.advance(t)

	event = readEvent(t, conn, func(e *FeedEvent) bool { return e.Type == EventDirect })
	a.Contains(event.Text, "Hand #1: your cards are")

	event = readEvent(t, conn, func(e *FeedEvent) bool { return e.Type == EventPrompt })
	a.Equal("c1", event.ChannelID)
	a.Equal("p1", event.Prompt.PlayerID)
	a.Equal(50, event.Prompt.ToCall)

	// actions can be sent over the socket
	require.NoError(t, conn.WriteJSON(wsAction{Action: "check"}))
	event = readEvent(t, conn, func(e *FeedEvent) bool { return e.Type == EventError })
	a.Equal("you cannot check with an active bet", event.Text)

	require.NoError(t, conn.WriteJSON(wsAction{Action: "fold"}))
	event = readEvent(t, conn, func(e *FeedEvent) bool {
		return e.Type == EventPost && strings.Contains(e.Text, "Bob wins $150")
	})
	a.Equal("c1", event.ChannelID)
}

func TestTableWS_Unauthorized(t *testing.T) {
	ts := newTestServer(t)

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/table/c1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
