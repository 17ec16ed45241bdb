// Package ws pushes task status updates to connected clients. Polling the
// HTTP status endpoint remains the primary contract; the stream is an
// additive convenience for frontends that want live progress.
package ws

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// Server manages WebSocket connections and fan-out of push events.
type Server struct {
	mu    sync.RWMutex
	conns map[*Conn]struct{}
}

func NewServer() *Server {
	return &Server{conns: make(map[*Conn]struct{})}
}

// ServeHTTP upgrades the HTTP request to a WebSocket connection. The
// connection is write-mostly: reads are drained only to detect closure.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The binary serves its own frontend from the same origin.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("ws accept", "err", err)
		return
	}

	conn := newConn(c)
	s.add(conn)
	slog.Debug("ws connected", "remote", r.RemoteAddr)

	// Block on the read pump — this goroutine is owned by net/http.
	conn.readPump(r.Context())
	s.remove(conn)
}

// Broadcast sends a push event to all connected clients.
func (s *Server) Broadcast(event string, data any) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.conns {
		c.SendEvent(event, data)
	}
}

func (s *Server) add(c *Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) remove(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.Close()
}
