package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"greenhouse_console/internal/logger"

	"github.com/gorilla/websocket"
)

// Connection timing. Mirrors the server's ping cadence: the server pings
// inside pongWait, so a read deadline of pongWait detects dead peers.
const (
	dialTimeout      = 10 * time.Second
	pongWait         = 60 * time.Second
	maxMsgSize       = 1 << 14 // 16 KB
	initialRedial    = time.Second
	maxRedial        = 30 * time.Second
	redialMultiplier = 2
)

// Status is the observable connection state.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusErroring     Status = "erroring"
)

// Handler receives the raw payload of one event.
type Handler func(data json.RawMessage)

// envelope is the wire format for push messages.
type envelope struct {
	Event EventKind       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Channel is one logical push connection, valid for exactly one token.
// A token change never mutates a Channel; the owner closes this instance
// and creates a new one, so an in-flight event from a superseded instance
// can be told apart from the current one by pointer identity.
type Channel struct {
	url   string
	token string
	log   *logger.Logger

	mu       sync.Mutex
	handlers map[EventKind]Handler
	conn     *websocket.Conn
	status   Status
	closed   bool
}

// New prepares a channel for a token without connecting yet.
func New(url, token string, log *logger.Logger) *Channel {
	return &Channel{
		url:      url,
		token:    token,
		log:      log,
		handlers: make(map[EventKind]Handler),
		status:   StatusDisconnected,
	}
}

// Subscribe installs the handler for an event kind, replacing any previous
// one. Exactly one handler is active per kind per instance, so re-binding
// across transport reconnects can never stack duplicates.
func (c *Channel) Subscribe(kind EventKind, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[kind] = h
}

// Unsubscribe removes the handler for an event kind.
func (c *Channel) Unsubscribe(kind EventKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, kind)
}

// Status returns the current connection state.
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connect starts the connection loop in the background. The loop redials
// with backoff on transient loss and stops when the channel is closed or
// the context is canceled.
func (c *Channel) Connect(ctx context.Context) {
	go c.run(ctx)
}

// Close tears the instance down: handlers stop firing immediately and the
// transport is closed. Safe to call from an event handler.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.handlers = make(map[EventKind]Handler)
	conn := c.conn
	c.conn = nil
	c.status = StatusDisconnected
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Channel) run(ctx context.Context) {
	delay := initialRedial
	for {
		if c.isClosed() || ctx.Err() != nil {
			return
		}

		conn, err := c.dial(ctx)
		if err != nil {
			c.setStatus(StatusErroring)
			c.dispatch(EventConnectError, mustJSON(ConnectErrorEvent{Reason: err.Error()}))
			if !c.sleep(ctx, delay) {
				return
			}
			if delay *= redialMultiplier; delay > maxRedial {
				delay = maxRedial
			}
			continue
		}
		delay = initialRedial

		if !c.install(conn) {
			_ = conn.Close()
			return
		}
		c.setStatus(StatusConnected)
		c.dispatch(EventConnected, nil)

		c.readLoop(conn)

		if c.isClosed() || ctx.Err() != nil {
			return
		}
		c.setStatus(StatusDisconnected)
		c.dispatch(EventDisconnected, nil)
	}
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	c.setStatus(StatusConnecting)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, header)
	if err != nil {
		c.log.Infow("channel_dial_failed", "err", err)
		return nil, err
	}

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(dialTimeout))
	})
	return conn, nil
}

// install records the live connection unless the channel closed while
// dialing was in flight.
func (c *Channel) install(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.conn = conn
	return true
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !c.isClosed() {
				c.log.Infow("channel_read_closed", "err", err)
			}
			_ = conn.Close()
			return
		}
		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			c.log.Infow("channel_bad_envelope", "err", err)
			continue
		}
		c.dispatch(env.Event, env.Data)
	}
}

// dispatch delivers one event to its handler. Events delivered after Close
// are dropped here, which is what makes a superseded instance inert.
func (c *Channel) dispatch(kind EventKind, data json.RawMessage) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	h := c.handlers[kind]
	c.mu.Unlock()

	if h != nil {
		h(data)
	}
}

func (c *Channel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Channel) setStatus(s Status) {
	c.mu.Lock()
	if !c.closed {
		c.status = s
	}
	c.mu.Unlock()
}

// sleep waits for the redial delay, returning false when the context ends
// first.
func (c *Channel) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
