package broadcast

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBufferSize = 16
	writeWait      = 5 * time.Second
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// Connection wraps a single websocket viewer of one project board. All
// writes go through the buffered send channel and a dedicated writer
// goroutine, so a stalled peer can never block a broadcast pass; it just
// fails Enqueue once the buffer fills.
type Connection struct {
	id        string
	projectID int64
	ws        *websocket.Conn
	logger    *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewConnection(id string, projectID int64, ws *websocket.Conn, logger *zap.Logger) *Connection {
	c := &Connection{
		id:        id,
		projectID: projectID,
		ws:        ws,
		logger:    logger,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
	}

	go c.writePump()

	return c
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) ProjectID() int64 {
	return c.projectID
}

// Enqueue hands a serialized frame to the writer goroutine without blocking.
// It fails when the connection is closed or the peer is too slow to drain
// its buffer; the caller treats either as an implicit disconnect.
func (c *Connection) Enqueue(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

// Close tears down the writer and the underlying socket. Safe to call from
// both the lifecycle handler and the broadcaster; only the first call does
// anything.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

func (c *Connection) writePump() {
	for {
		select {
		case payload := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("write failed, closing connection",
					zap.String("connectionId", c.id),
					zap.Error(err))
				c.Close()

				return
			}
		case <-c.done:
			return
		}
	}
}
