// Package notify pushes freshly committed notifications to connected
// browsers over websockets. Delivery here is best-effort; the notifications
// table remains the source of truth and the bell re-syncs from it.
package notify

import (
	"log"
	"net/http"
	"sync"

	"worklog-backend/internal/middleware"
	"worklog-backend/internal/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Hub struct {
	clients    map[*websocket.Conn]int // conn -> recipient user ID
	clientsMux sync.Mutex
	broadcast  chan models.Notification
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]int),
		broadcast: make(chan models.Notification, 64),
	}
}

// Run drains the broadcast channel and fans each notification out to the
// sockets belonging to its recipient. Call in a goroutine at startup.
func (h *Hub) Run() {
	for n := range h.broadcast {
		h.clientsMux.Lock()
		for conn, userID := range h.clients {
			if userID != n.RecipientID {
				continue
			}
			if err := conn.WriteJSON(n); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.clientsMux.Unlock()
	}
}

// Publish queues committed notifications for push delivery. Never blocks
// the caller: if the hub is saturated the browser catches up from the
// notifications endpoint instead.
func (h *Hub) Publish(notifications ...models.Notification) {
	for _, n := range notifications {
		select {
		case h.broadcast <- n:
		default:
			log.Printf("[Notify] broadcast queue full, dropping push for user %d", n.RecipientID)
		}
	}
}

// ServeWS upgrades an authenticated request to a websocket and keeps the
// connection registered until the peer goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = userID
	h.clientsMux.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			break
		}
	}
}
