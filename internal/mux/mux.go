package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"

	"tablepoker-server/internal/jwt"
	"tablepoker-server/internal/metrics"
	"tablepoker-server/pkg/room"
)

type ctxKey int

const (
	ctxPlayerKey ctxKey = iota
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	pitBoss *room.PitBoss
	feed    *Feed

	// store for testing purposes
	authRouter *gmux.Router
}

// NewMux returns a new HTTP mux
// feed may be nil, in which case the websocket endpoint is not registered.
func NewMux(version string, pitBoss *room.PitBoss, feed *Feed) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
		feed:    feed,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodGet).Path("/metrics").Handler(metrics.Handler())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodGet).Path("/table").Handler(this.getTable())

		tr := r.PathPrefix("/table/{channel:[A-Za-z0-9_-]+}").Subrouter()
		tr.Methods(http.MethodGet).Path("").Handler(this.getTableChannel())
		tr.Methods(http.MethodGet).Path("/hands").Handler(this.getTableChannelHands())
		tr.Methods(http.MethodPost).Path("/join").Handler(this.postTableChannelJoin())
		tr.Methods(http.MethodPost).Path("/leave").Handler(this.postTableChannelLeave())
		tr.Methods(http.MethodPost).Path("/start").Handler(this.postTableChannelStart())
		tr.Methods(http.MethodPost).Path("/end").Handler(this.postTableChannelEnd())
		tr.Methods(http.MethodPost).Path("/action").Handler(this.postTableChannelAction())

		if feed != nil {
			tr.Methods(http.MethodGet).Path("/ws").Handler(this.getTableChannelWS())
		}
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		playerID, err := jwt.ValidPlayerID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxPlayerKey, playerID)
		w.Header().Set("TablePoker-PlayerID", playerID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func playerID(r *http.Request) string {
	return r.Context().Value(ctxPlayerKey).(string)
}

func channelID(r *http.Request) string {
	return gmux.Vars(r)["channel"]
}
