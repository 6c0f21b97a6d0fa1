package mux

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"tablepoker-server/pkg/holdem"
	"tablepoker-server/pkg/room"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// wsAction is an action sent by the client over the websocket
type wsAction struct {
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

func (m *Mux) getTableChannelWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		channel := channelID(r)
		player := playerID(r)
		sub := m.feed.subscribe(channel, player)
		sub.send <- &FeedEvent{Type: EventSubscribed, ChannelID: channel}

		done := make(chan bool)
		defer func() {
			m.feed.unsubscribe(sub)
			close(done)
			_ = conn.Close()
		}()

		go m.webSocketWriteLoop(conn, sub, done)
		m.webSocketReadLoop(conn, sub)
	}
}

func (m *Mux) webSocketWriteLoop(conn *websocket.Conn, sub *subscriber, done chan bool) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event := <-sub.send:
			logrus.WithFields(logrus.Fields{"type": event.Type, "playerID": sub.playerID}).Trace("sending event to client")

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				logrus.WithError(err).WithField("playerID", sub.playerID).Error("could not write event")
				return
			}
		}
	}
}

// webSocketReadLoop applies actions sent by the client until the connection closes
func (m *Mux) webSocketReadLoop(conn *websocket.Conn, sub *subscriber) {
	for {
		var msg wsAction
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("playerID", sub.playerID).Error("could not read action")
			}

			return
		}

		text := ""
		if action, err := holdem.ActionFromString(strings.ToLower(msg.Action)); err != nil {
			text = err.Error()
		} else if _, err := m.pitBoss.Act(context.Background(), sub.channelID, sub.playerID, action, msg.Amount); err != nil {
			text = http.StatusText(http.StatusInternalServerError)
			if room.IsUserError(err) {
				text = err.Error()
			}
		}

		if text != "" {
			select {
			case sub.send <- &FeedEvent{Type: EventError, ChannelID: sub.channelID, Text: text}:
			default:
			}
		}
	}
}
