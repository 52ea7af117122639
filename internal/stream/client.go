package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Clients send nothing but control frames.
	maxMessageSize = 512
	// Events buffered per client before it counts as too slow.
	sendBufferSize = 64
)

// client is one WebSocket connection following one game.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	// closed when the peer goes away or sends something unreadable
	gone     chan struct{}
	goneOnce sync.Once

	// closed when send overflows
	lagging     chan struct{}
	lagOnce     sync.Once
	sessionDone <-chan struct{}
}

func newClient(conn *websocket.Conn, sessionDone <-chan struct{}, logger *slog.Logger) *client {
	return &client{
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		logger:      logger,
		gone:        make(chan struct{}),
		lagging:     make(chan struct{}),
		sessionDone: sessionDone,
	}
}

// enqueue hands a message to the write pump without blocking. It reports
// false and flags the client as lagging when the buffer is full.
func (c *client) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		c.lagOnce.Do(func() { close(c.lagging) })
		return false
	}
}

// readPump drains the connection so control frames are processed. It
// returns when the peer disconnects.
func (c *client) readPump() {
	defer c.goneOnce.Do(func() { close(c.gone) })

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump writes queued events and pings until the peer leaves, the
// client lags, or the session ends. It owns every write to conn.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.sessionDone:
			c.drain()
			c.closeWith(websocket.CloseNormalClosure, "game ended")
			return
		case <-c.lagging:
			c.closeWith(websocket.CloseTryAgainLater, "client too slow")
			return
		case <-c.gone:
			return
		}
	}
}

// drain flushes whatever is already queued.
func (c *client) drain() {
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *client) closeWith(code int, reason string) {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
}
