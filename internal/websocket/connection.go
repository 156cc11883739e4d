// Package websocket is the transport: it upgrades HTTP requests, owns the
// socket of each connection and feeds inbound frames to the chat handler.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"intouch/pkg/interfaces"
)

// Connection implements interfaces.Connection over a gorilla socket.
// All data frames go through a single writer goroutine.
type Connection struct {
	id        string
	userID    string
	conn      *websocket.Conn
	writeCh   chan []byte
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

var _ interfaces.Connection = (*Connection)(nil)

// NewConnection wraps conn for userID and starts its writer.
func NewConnection(conn *websocket.Conn, userID string, config Config) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:      uuid.NewString(),
		userID:  userID,
		conn:    conn,
		writeCh: make(chan []byte, config.SendBuffer),
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.writeLoop()

	return c
}

func (c *Connection) GetConnectionID() string { return c.id }
func (c *Connection) GetUserID() string       { return c.userID }

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} { return c.ctx.Done() }

func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
				_ = c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.Close()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// WriteJSON queues v for the writer. It fails rather than block longer
// than the write timeout.
func (c *Connection) WriteJSON(v any) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return ErrInvalidJSON
	}

	timer := time.NewTimer(c.config.WriteTimeout)
	defer timer.Stop()

	select {
	case c.writeCh <- data:
		return nil
	case <-timer.C:
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// ping sends a control frame; gorilla allows this concurrently with the
// writer goroutine.
func (c *Connection) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.config.WriteTimeout))
}

// CloseWithReason sends a close frame with code and text, then closes.
func (c *Connection) CloseWithReason(code int, text string) error {
	msg := websocket.FormatCloseMessage(code, text)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.config.WriteTimeout))
	return c.Close()
}

// Close releases the socket. Safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}
