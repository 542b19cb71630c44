package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"scoreboard-service/internal/app"
	"scoreboard-service/internal/domain"
)

// WSHandler streams live leaderboard updates: subscribers get the current
// board on connect and a fresh one after every accepted submission in scope.
type WSHandler struct {
	rankings *app.RankingService
	hub      *app.BoardHub
	upgrader websocket.Upgrader
}

func NewWSHandler(rankings *app.RankingService, hub *app.BoardHub) *WSHandler {
	return &WSHandler{
		rankings: rankings,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and pushes board snapshots until the client
// disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, role, err := identity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()
	kind, err := domain.ParseItemKind(query.Get("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := domain.ParseItemRef(kind, query.Get("ref"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	window := query.Get("window")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	classID, err := h.rankings.Scope(r.Context(), userID, role)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	// Subscribe before the first snapshot so no submission slips between
	// the snapshot and the subscription.
	signals, cancel := h.hub.Subscribe(app.BoardKey(item, classID))
	defer cancel()

	board, err := h.rankings.Leaderboard(r.Context(), userID, role, kind, item.Ref, window)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	if err := conn.WriteJSON(outboundMessage[domain.Leaderboard]{Type: "leaderboard", Payload: board}); err != nil {
		return
	}

	// Reader goroutine: we accept no inbound payloads, but reading is how we
	// notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			board, err := h.rankings.Leaderboard(r.Context(), userID, role, kind, item.Ref, window)
			if err != nil {
				log.Printf("live board refresh failed: %v", err)
				continue
			}
			if err := conn.WriteJSON(outboundMessage[domain.Leaderboard]{Type: "leaderboard", Payload: board}); err != nil {
				return
			}
		}
	}
}
