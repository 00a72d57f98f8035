// Package hub provides connection management for WebSocket clients.
package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection represents a single WebSocket connection.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	mu   sync.Mutex
}

// Hub manages all WebSocket connections. Session membership lives in the
// session registry; the hub only maps connection ids to live sockets.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
	}
}

// NewConnection wraps a websocket in a Connection with a fresh id.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 256),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	h.connections[conn.ID] = conn
	h.mu.Unlock()
	log.Printf("Connection registered: %s", conn.ID)
}

// Unregister removes a connection and closes its send channel. Unregistering
// an unknown connection is a no-op.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[conn.ID]; ok {
		delete(h.connections, conn.ID)
		close(conn.Send)
	}
	h.mu.Unlock()
	log.Printf("Connection unregistered: %s", conn.ID)
}

// Send marshals an event and queues it for one connection. Delivery is
// at-most-once: a full buffer or a vanished connection drops the event rather
// than stalling the caller.
func (h *Hub) Send(connID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event for %s: %v", connID, err)
		return
	}

	h.mu.RLock()
	conn, ok := h.connections[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case conn.Send <- data:
	default:
		log.Printf("Connection %s buffer full, dropping event", connID)
	}
}

// Count returns the number of active connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
