// Package hub fans draft lifecycle events out to WebSocket subscribers,
// so review UIs see new drafts without polling.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Feed event types.
const (
	EventDraftCreated = "draft_created"
	EventDraftFiled   = "draft_filed"
)

// Event is a single feed entry pushed to subscribers.
type Event struct {
	EventID string      `json:"event_id"`
	Type    string      `json:"type"`
	Ts      int64       `json:"ts"` // Unix milliseconds
	Draft   interface{} `json:"draft"`
}

// Connection represents a single subscriber.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	mu   sync.Mutex
}

// WriteMessage writes to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

// Hub manages all feed subscribers. All drafts go to all subscribers;
// the review UI is a single audience.
type Hub struct {
	connections map[string]*Connection
	register    chan *Connection
	unregister  chan *Connection
	broadcast   chan []byte
	logger      *zap.Logger
	mu          sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan []byte, 256),
		logger:      logger,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			h.mu.Unlock()
			h.logger.Info("feed subscriber registered", zap.String("conn_id", conn.ID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				close(conn.Send)
			}
			h.mu.Unlock()
			h.logger.Info("feed subscriber unregistered", zap.String("conn_id", conn.ID))

		case data := <-h.broadcast:
			h.mu.RLock()
			for id, conn := range h.connections {
				select {
				case conn.Send <- data:
				default:
					// Buffer full, drop the slow subscriber.
					h.logger.Warn("feed subscriber buffer full, closing", zap.String("conn_id", id))
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NewConnection wraps a raw websocket connection for the hub.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 256),
	}
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister unregisters a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Publish broadcasts a draft lifecycle event to all subscribers.
func (h *Hub) Publish(eventType string, draft interface{}) {
	if h == nil {
		return
	}
	data, err := json.Marshal(Event{
		EventID: "evt_" + uuid.New().String()[:8],
		Type:    eventType,
		Ts:      time.Now().UnixMilli(),
		Draft:   draft,
	})
	if err != nil {
		h.logger.Warn("failed to marshal feed event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("feed backlog full, dropping event", zap.String("type", eventType))
	}
}

// ConnectionCount returns the number of active subscribers.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// ReadPump drains inbound frames until the peer goes away. The feed is
// one-way; anything the client sends is discarded.
func (h *Hub) ReadPump(conn *Connection) {
	defer func() {
		h.Unregister(conn)
		conn.Close()
	}()

	conn.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("feed read error", zap.Error(err))
			}
			return
		}
	}
}

// WritePump forwards feed events to the connection and keeps it alive
// with pings.
func (h *Hub) WritePump(conn *Connection) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
