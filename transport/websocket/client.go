package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendQueueSize  = 16
)

type client struct {
	hub     *Hub
	conn    *websocket.Conn
	channel string
	send    chan []byte

	mu          sync.Mutex
	lastVersion int64
}

func newClient(hub *Hub, conn *websocket.Conn, channel string) *client {
	return &client{
		hub:     hub,
		conn:    conn,
		channel: channel,
		send:    make(chan []byte, sendQueueSize),
	}
}

// enqueue - queues payload unless a newer view was already queued. Returns
// false when the queue is full. Callers hold the hub lock, so send is open.
func (that *client) enqueue(version int64, payload []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if version <= that.lastVersion {
		return true
	}

	select {
	case that.send <- payload:
		that.lastVersion = version
		return true
	default:
		return false
	}
}

// readPump - the socket is push only; reading keeps pongs flowing and notices
// when the peer goes away.
func (that *client) readPump() {
	defer func() {
		that.hub.unregister(that)
		_ = that.conn.Close()
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := that.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.hub.logger.Debug("socket closed unexpectedly", "channel", that.channel, "error", err)
			}
			return
		}
	}
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
