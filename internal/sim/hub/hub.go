package hub

import (
	"encoding/json"
	"sync"
	"time"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/logger"

	"github.com/gorilla/websocket"
)

// Write/ping timing, shared with the client side's read deadline.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// envelope is the wire format for push messages.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type client struct {
	conn        *websocket.Conn
	send        chan []byte
	userID      int
	username    string
	role        string
	connectedAt time.Time
	once        sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans events out to every connected console and enforces one session
// of record per user: a second connection for the same user force-kills
// the first.
type Hub struct {
	log *logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	byUser  map[int]*client
}

func New(log *logger.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*client]struct{}),
		byUser:  make(map[int]*client),
	}
}

// Register takes ownership of an upgraded connection. Blocks until the
// connection dies.
func (h *Hub) Register(conn *websocket.Conn, userID int, username, role string) {
	c := &client{
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		userID:      userID,
		username:    username,
		role:        role,
		connectedAt: time.Now().UTC(),
	}

	h.mu.Lock()
	if prev, ok := h.byUser[userID]; ok {
		h.kickLocked(prev, "duplicate session")
	}
	h.clients[c] = struct{}{}
	h.byUser[userID] = c
	h.mu.Unlock()

	h.log.Infow("console_connected", "username", username)
	go c.writePump()
	c.readPump() // returns on disconnect
	h.drop(c)
}

// Broadcast sends one event to every connected console.
func (h *Hub) Broadcast(event string, data any) {
	msg, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		h.log.Errorw("broadcast_marshal_failed", "event", event, "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow consumer: drop it rather than stall the loop.
			h.removeLocked(c)
			c.close()
		}
	}
}

// Online lists connected operators for the admin panel.
func (h *Hub) Online() []greenhouse.OnlineUser {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]greenhouse.OnlineUser, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, greenhouse.OnlineUser{
			Username:    c.username,
			Role:        c.role,
			ConnectedAt: c.connectedAt,
		})
	}
	return out
}

// kickLocked pushes a force_disconnect then closes; the mutex is held.
func (h *Hub) kickLocked(c *client, reason string) {
	msg, _ := json.Marshal(envelope{
		Event: "force_disconnect",
		Data:  map[string]string{"reason": reason},
	})
	select {
	case c.send <- msg:
	default:
	}
	h.removeLocked(c)
	c.close()
	h.log.Infow("console_kicked", "username", c.username, "reason", reason)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
	c.close()
	h.log.Infow("console_disconnected", "username", c.username)
}

func (h *Hub) removeLocked(c *client) {
	delete(h.clients, c)
	if h.byUser[c.userID] == c {
		delete(h.byUser, c.userID)
	}
}

// readPump drains control frames and detects closure.
func (c *client) readPump() {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump serializes all writes to the connection and keeps it alive
// with pings.
func (c *client) writePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
