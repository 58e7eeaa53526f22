package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/DuncanWalter/combobulate/internal/train"
)

// Event is the message a Hub sends to its clients.
type Event struct {
	Type     string         `json:"type"`
	Session  string         `json:"session"`
	Progress train.Progress `json:"progress"`
}

// EventProgress is the type of progress events.
const EventProgress = "progress"

// Hub fans training progress out to websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *log.Logger
}

// NewHub creates a hub with no clients. A nil logger uses log.Default.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

// Handler returns the websocket endpoint. When origin is not empty, only
// handshakes from that origin are accepted.
func (h *Hub) Handler(origin string) http.Handler {
	return websocket.Server{
		Handshake: func(config *websocket.Config, req *http.Request) error {
			o, err := websocket.Origin(config, req)
			if err != nil {
				return err
			}
			if origin != "" && (o == nil || o.String() != origin) {
				return fmt.Errorf("origin %v not allowed", o)
			}
			config.Origin = o
			return nil
		},
		Handler: h.serve,
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) serve(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()

	defer h.drop(ws)

	// Clients only listen; reading detects the close.
	for {
		var data string
		if err := websocket.Message.Receive(ws, &data); err != nil {
			if err != io.EOF {
				h.logger.Printf("websocket read error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) drop(ws *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[ws]
	delete(h.clients, ws)
	h.mu.Unlock()
	if ok {
		ws.Close()
	}
}

// Broadcast sends a progress event for session to every client. Clients
// that cannot be written to are disconnected.
func (h *Hub) Broadcast(session string, progress train.Progress) {
	data, err := json.Marshal(Event{Type: EventProgress, Session: session, Progress: progress})
	if err != nil {
		h.logger.Printf("failed to encode progress: %v", err)
		return
	}

	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for ws := range h.clients {
		clients = append(clients, ws)
	}
	h.mu.Unlock()

	for _, ws := range clients {
		if err := websocket.Message.Send(ws, string(data)); err != nil {
			h.logger.Printf("websocket send error: %v", err)
			h.drop(ws)
		}
	}
}
