package ws

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is pushed to every connected client whenever a job changes state.
type Event struct {
	JobID   string `json:"job_id"`
	JobType string `json:"job_type"`
	Status  string `json:"status"`
}

// Hub fans job lifecycle events out to websocket subscribers.
type Hub struct {
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve upgrades the request and registers the connection until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.addClient(conn)
	return nil
}

func (h *Hub) addClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Debug("websocket client connected", "total_clients", count)

	go func() {
		defer func() {
			h.clientsMu.Lock()
			delete(h.clients, conn)
			h.clientsMu.Unlock()
			conn.Close()
			h.logger.Debug("websocket client disconnected")
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast writes the event to every connected client. Write failures are
// logged and the connection is left for the read loop to reap.
func (h *Hub) Broadcast(ev Event) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Warn("websocket broadcast failed", "error", err)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}
