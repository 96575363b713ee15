package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/julianstephens/confsched/internal/logger"
	"github.com/julianstephens/confsched/internal/models"
	"github.com/julianstephens/confsched/internal/schedule"
)

const (
	// MessageTypeConnected is sent once to every new client.
	MessageTypeConnected = "connected"
	// MessageTypeReloaded indicates the document was changed outside the API.
	MessageTypeReloaded = "schedule_reloaded"

	writeTimeout = 5 * time.Second
)

// Message is the envelope of every live update.
type Message struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ChangeData is the payload of mutation and reload messages.
type ChangeData struct {
	DayID           string          `json:"day_id,omitempty"`
	EventID         string          `json:"event_id,omitempty"`
	PreviousEventID string          `json:"previous_event_id,omitempty"`
	Schedule        models.Schedule `json:"schedule"`
}

// ConnectedData is the payload of the welcome message.
type ConnectedData struct {
	ClientID string `json:"client_id"`
}

type client struct {
	id   string
	conn *websocket.Conn
}

// Hub fans schedule updates out to WebSocket clients.
type Hub struct {
	clients   map[string]*client
	clientsMu sync.RWMutex

	broadcast chan Message

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewHub creates a hub. Start must be called before messages are delivered.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:   make(map[string]*client),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the broadcast loop.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return
	}
	h.started = true
	h.wg.Add(1)
	go h.broadcastLoop()
}

// Stop closes every client and waits for the broadcast loop to exit.
func (h *Hub) Stop() {
	h.cancel()

	h.clientsMu.Lock()
	for id, c := range h.clients {
		_ = c.conn.Close(websocket.StatusGoingAway, "Server shutting down")
		delete(h.clients, id)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
}

// Broadcast queues a message for all connected clients. Messages are
// dropped when the queue is full.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		logger.Error("Failed to marshal live update", "type", msgType, "error", err)
		return
	}

	msg := Message{Type: msgType, Timestamp: time.Now().UTC(), Data: raw}
	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
	default:
		logger.Warn("Broadcast channel full, dropping message", "type", msgType)
	}
}

// Listener adapts the hub to schedule service notifications.
func (h *Hub) Listener() schedule.Listener {
	return func(c schedule.Change, s models.Schedule) {
		h.Broadcast(c.Type, ChangeData{
			DayID:           c.DayID,
			EventID:         c.EventID,
			PreviousEventID: c.PreviousEventID,
			Schedule:        s,
		})
	}
}

// ClientCount returns the current number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Error("Failed to marshal message", "error", err)
				continue
			}

			h.clientsMu.RLock()
			clients := make([]*client, 0, len(h.clients))
			for _, c := range h.clients {
				clients = append(clients, c)
			}
			h.clientsMu.RUnlock()

			for _, c := range clients {
				if err := h.write(c, data); err != nil {
					logger.Debug("Failed to send to client", "client", c.id, "error", err)
					h.removeClient(c)
				}
			}
		}
	}
}

func (h *Hub) write(c *client, data []byte) error {
	ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// ServeHTTP upgrades the request to a WebSocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The server's read and write timeouts must not end long-lived sockets.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}

	h.clientsMu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.clientsMu.Unlock()

	logger.Info("Live update client connected", "client", c.id, "total", count)

	welcome, _ := json.Marshal(Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().UTC(),
		Data:      mustJSON(ConnectedData{ClientID: c.id}),
	})
	if err := h.write(c, welcome); err != nil {
		h.removeClient(c)
		return
	}

	h.readLoop(c)
}

// readLoop keeps the connection open until the client goes away. Client
// messages are ignored.
func (h *Hub) readLoop(c *client) {
	defer h.removeClient(c)

	for {
		if _, _, err := c.conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(c *client) {
	h.clientsMu.Lock()
	if _, exists := h.clients[c.id]; !exists {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, c.id)
	count := len(h.clients)
	h.clientsMu.Unlock()

	_ = c.conn.Close(websocket.StatusNormalClosure, "")
	logger.Info("Live update client disconnected", "client", c.id, "total", count)
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
