package websocket

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Outbound queue per connection. When full the connection is
	// considered stalled and gets dropped so it cannot block
	// delivery to anyone else.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

// Conn is the subset of *websocket.Conn the client needs. Tests
// substitute an in-memory implementation.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Client is one live connection owned by one user. A user may hold
// any number of concurrent clients (multi-device).
type Client struct {
	id     string
	userID uint
	hub    *Hub
	conn   Conn

	// send is never closed; done signals teardown instead, so an
	// in-flight enqueue can race a disconnect without panicking.
	send   chan []byte
	done   chan struct{}
	closed int32
}

func newClient(hub *Hub, conn Conn, userID uint) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() uint {
	return c.userID
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.done)
	}
}

// enqueue hands pre-marshaled bytes to the write pump without ever
// blocking the caller. A full buffer means the consumer stalled; the
// client is torn down rather than letting it wedge the hub.
func (c *Client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return ErrClientDisconnected
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClientDisconnected
	default:
		slog.Warn("send buffer full, dropping client",
			"connectionID", c.id, "userID", c.userID)
		c.close()
		return ErrClientDisconnected
	}
}

// readPump consumes the connection until it drops. Inbound frames
// are only keepalive traffic; all mutations arrive over REST, so a
// data frame gets an error event back instead of being interpreted.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read failed",
					"connectionID", c.id, "userID", c.userID, "error", err)
			}
			return
		}
		if len(payload) > 0 {
			c.enqueue(mustMarshal(NewErrorEvent(
				"unsupported_operation", "mutations go through the REST API")))
		}
	}
}

// writePump is the single writer for the connection, so events are
// written in the exact order they were enqueued.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("websocket write failed",
					"connectionID", c.id, "userID", c.userID, "error", err)
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades the request and registers the connection under the
// caller-authenticated user id. The room key is never taken from the
// client; the transport layer must resolve identity first.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "userID", userID, "error", err)
		return
	}

	client := newClient(hub, conn, userID)
	hub.Register(client)

	go client.writePump()
	go client.readPump()

	client.enqueue(mustMarshal(NewConnectEvent(client.id, userID)))
}
