package mux

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"tablepoker-server/pkg/holdem"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (m *Mux) getTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables := m.pitBoss.Tables()
		sort.Strings(tables)
		writeJSON(w, http.StatusOK, tables)
	}
}

func (m *Mux) getTableChannel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.pitBoss.State(r.Context(), channelID(r))
		if err != nil {
			writeTableError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func (m *Mux) getTableChannelHands() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := parseRows(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		hands, err := m.pitBoss.Hands(r.Context(), channelID(r), rows)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, hands)
	}
}

type postJoinPayload struct {
	Name string `json:"name"`
}

func (m *Mux) postTableChannelJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postJoinPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		name := strings.TrimSpace(pp.Name)
		if name == "" {
			name = playerID(r)
		}

		if len(name) > 40 {
			writeJSONError(w, http.StatusBadRequest, errors.New("name cannot be longer than 40 characters"))
			return
		}

		m.runAction(w, r, func(ctx context.Context, channelID, playerID string) (string, error) {
			return m.pitBoss.Join(ctx, channelID, playerID, name)
		})
	}
}

func (m *Mux) postTableChannelLeave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.runAction(w, r, m.pitBoss.Leave)
	}
}

func (m *Mux) postTableChannelStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.runAction(w, r, m.pitBoss.Start)
	}
}

func (m *Mux) postTableChannelEnd() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.runAction(w, r, m.pitBoss.End)
	}
}

type postActionPayload struct {
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

func (m *Mux) postTableChannelAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postActionPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		action, err := holdem.ActionFromString(strings.ToLower(pp.Action))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		m.runAction(w, r, func(ctx context.Context, channelID, playerID string) (string, error) {
			return m.pitBoss.Act(ctx, channelID, playerID, action, pp.Amount)
		})
	}
}

func (m *Mux) runAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, channelID, playerID string) (string, error)) {
	msg, err := fn(r.Context(), channelID(r), playerID(r))
	if err != nil {
		writeTableError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}
