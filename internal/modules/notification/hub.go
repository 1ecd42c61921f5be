package notification

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBufferSize = 16
)

// Event is pushed to a connected student.
type Event struct {
	Type       string `json:"type"`
	InstanceID int64  `json:"instance_id,omitempty"`
	Status     string `json:"status,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Message    string `json:"message,omitempty"`
}

const (
	EventPaymentStatus = "payment_status"
	EventMessage       = "message"
)

// client owns one websocket; only its writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	connections map[int64]*client
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*client),
	}
}

// Register replaces any previous connection of the user.
func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mutex.Lock()
	if old, exists := h.connections[userID]; exists {
		close(old.send)
	}
	h.connections[userID] = c
	h.mutex.Unlock()

	go h.writePump(c)
}

// Unregister only drops conn if it is still the registered one.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if current, exists := h.connections[userID]; exists && current.conn == conn {
		close(current.send)
		delete(h.connections, userID)
	}
}

// SendToUser queues event for the user's connection. It never blocks: a
// missing connection or a full buffer drops the event.
func (h *Hub) SendToUser(userID int64, event Event) bool {
	msg, err := json.Marshal(event)
	if err != nil {
		return false
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	c, exists := h.connections[userID]
	if !exists {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// PublishStatus tells the student their payment for instanceID was recorded.
func (h *Hub) PublishStatus(userID, instanceID int64, status string) {
	h.SendToUser(userID, Event{Type: EventPaymentStatus, InstanceID: instanceID, Status: status})
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.connections {
		close(c.send)
		delete(h.connections, userID)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
