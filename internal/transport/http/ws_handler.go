package http

import (
	"log"
	"net/http"

	"culturequiz-service/internal/app"
	"culturequiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler streams a user's statistics snapshots over a websocket so a
// dashboard sees its numbers move the moment an attempt commits.
type WSHandler struct {
	service  *app.AttemptService
	feed     *app.StatsFeed
	verify   TokenVerifier
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService, feed *app.StatsFeed, verify TokenVerifier) *WSHandler {
	return &WSHandler{
		service: service,
		feed:    feed,
		verify:  verify,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage struct {
	Type    string                `json:"type"`
	Payload domain.UserStatistics `json:"payload"`
}

// ServeWS upgrades the request and pushes the current statistics snapshot
// followed by one message per committed attempt. Browsers cannot set headers
// on websocket dials, so the credential arrives as a query parameter.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := h.verify.Verify(r.Context(), token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe(userID)
	defer cancel()

	initial, err := h.service.GetStatistics(r.Context(), userID)
	if err != nil {
		log.Printf("ws initial statistics: %v", err)
		return
	}
	if err := conn.WriteJSON(outboundMessage{Type: "statistics", Payload: initial}); err != nil {
		return
	}

	// Reader drains control/client frames and signals close.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case stats, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage{Type: "statistics", Payload: stats}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerDone:
			return
		}
	}
}
