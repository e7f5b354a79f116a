package relay

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Hamzas-Aigentic/Forgeflow/pkg/protocol"
)

var errConnClosed = errors.New("connection closed")

// Conn wraps a websocket connection with serialized, liveness-guarded
// writes. The read side stays with the connection handler; everything that
// pushes outbound (relay loop, error injector) goes through Push.
type Conn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

// NewConn wraps an upgraded websocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Push sends one envelope to the client. Best effort: a write failure marks
// the connection dead and all later pushes fail fast.
func (c *Conn) Push(msg protocol.ServerEnvelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errConnClosed
	}
	if err := c.ws.WriteJSON(msg); err != nil {
		c.closed = true
		return err
	}
	return nil
}

// Close marks the connection dead and closes the underlying socket. Safe to
// call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	_ = c.ws.Close()
}
