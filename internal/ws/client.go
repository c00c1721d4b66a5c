package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrClientClosed   = errors.New("client_closed")
	ErrSendBufferFull = errors.New("send_buffer_full")
)

// Client is one upgraded connection. It satisfies session.Conn.
type Client struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 16
	}
	return &Client{conn: conn, send: make(chan []byte, buffer)}
}

// Send queues msg for the write loop without blocking.
func (c *Client) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// shutdown stops accepting messages and lets the write loop drain.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
