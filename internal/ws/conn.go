package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 4 << 10 // clients have nothing big to say
)

// Conn wraps a single WebSocket connection.
type Conn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func newConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// serverMessage is the wire shape of a push event.
type serverMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// SendEvent sends a server push event with a single data payload.
func (c *Conn) SendEvent(event string, data any) {
	buf, err := json.Marshal(serverMessage{Event: event, Data: data})
	if err != nil {
		slog.Error("ws marshal", "err", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := c.ws.Write(ctx, websocket.MessageText, buf); err != nil {
		slog.Debug("ws write", "err", err)
		c.closeLocked()
	}
}

// readPump drains incoming frames until the peer goes away. Inbound
// payloads are ignored; the stream is push-only.
func (c *Conn) readPump(ctx context.Context) {
	c.ws.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.ws.Read(ctx); err != nil {
			slog.Debug("ws read", "err", err)
			return
		}
	}
}

// Close shuts down the connection.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Conn) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.ws.Close(websocket.StatusNormalClosure, "")
}
