package notify

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/roadmap-api/internal/domain"
)

const writeWait = 5 * time.Second

// ErrHubClosed is returned by Serve after Close.
var ErrHubClosed = errors.New("notification hub closed")

// Hub tracks websocket connections per user.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu          sync.Mutex
	connections map[uuid.UUID]map[*client]struct{}
	closed      bool
}

// client serializes writes to one connection; gorilla allows a single
// concurrent writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *client) goingAway() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
	_ = c.conn.Close()
}

var _ Publisher = (*Hub)(nil)

// NewHub creates a Hub. Origins are not checked here; CORS is handled by the router.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:      logger.With("component", "ws_hub"),
		connections: make(map[uuid.UUID]map[*client]struct{}),
	}
}

// Serve upgrades the request and keeps the connection registered for userID
// until the client disconnects or the hub closes. Messages from the client
// are read and discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		return err
	}

	c := &client{conn: conn}
	if !h.register(userID, c) {
		c.goingAway()
		return ErrHubClosed
	}
	h.logger.Debug("websocket connected", "user_id", userID)

	defer func() {
		h.unregister(userID, c)
		_ = conn.Close()
		h.logger.Debug("websocket disconnected", "user_id", userID)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

func (h *Hub) register(userID uuid.UUID, c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.connections[userID] == nil {
		h.connections[userID] = make(map[*client]struct{})
	}
	h.connections[userID][c] = struct{}{}
	return true
}

func (h *Hub) unregister(userID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[userID]
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.connections, userID)
	}
}

// Publish implements Publisher. Connections that fail a write are dropped.
func (h *Hub) Publish(n domain.Notification) {
	message, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("failed to encode notification", "error", err, "notification_id", n.ID)
		return
	}

	for _, c := range h.clients(n.UserID) {
		if err := c.send(message); err != nil {
			h.logger.Warn("failed to send notification, dropping connection",
				"error", err,
				"user_id", n.UserID)
			h.unregister(n.UserID, c)
			_ = c.conn.Close()
		}
	}
}

// clients snapshots the user's connections so writes happen without h.mu;
// a slow client then delays only its own deliveries.
func (h *Hub) clients(userID uuid.UUID) []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.connections[userID]))
	for c := range h.connections[userID] {
		out = append(out, c)
	}
	return out
}

// Connections returns the number of open connections for userID.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections[userID])
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true

	var all []*client
	for userID, conns := range h.connections {
		for c := range conns {
			all = append(all, c)
		}
		delete(h.connections, userID)
	}
	h.mu.Unlock()

	for _, c := range all {
		c.goingAway()
	}
}
