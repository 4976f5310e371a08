package signaling

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

	// Maximum frame size; SDP offers stay well under this.
	maxMessageSize = 16 * 1024

	sendBufferSize = 64
)

// Client is one live signaling connection (one browser tab). A client may be
// a member of any number of rooms at once, though a call uses exactly one.
type Client struct {
	relay  *Relay
	conn   *websocket.Conn
	userID string
	log    *slog.Logger

	// mu serializes deliver against closeSend. Event dispatch runs on every
	// peer's read goroutine, so a broadcast can race this client's teardown;
	// the flag keeps a send from ever hitting the closed channel.
	mu     sync.Mutex
	closed bool
	send   chan Envelope
}

func NewClient(relay *Relay, conn *websocket.Conn, userID string, log *slog.Logger) *Client {
	return &Client{
		relay:  relay,
		conn:   conn,
		userID: userID,
		send:   make(chan Envelope, sendBufferSize),
		log:    log.With("user_id", userID),
	}
}

func (c *Client) UserID() string { return c.userID }

// Run starts the read and write pumps and blocks until the connection drops.
// The disconnect cleanup broadcast runs exactly once, from the read side.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// deliver queues an envelope for the write pump without blocking the caller.
// A slow client loses frames rather than stalling the sender's event
// dispatch; the protocol is best-effort and the client renegotiates.
func (c *Client) deliver(env Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- env:
	default:
		c.log.Warn("send buffer full, dropping frame", "event", env.Type, "room_id", env.RoomID)
	}
}

// closeSend shuts the send channel exactly once. Called only from the read
// side after the registry no longer lists this client.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.relay.HandleDisconnect(c)
		c.closeSend()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read failed", "err", err)
			}
			return
		}
		c.relay.HandleMessage(c, raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				c.log.Warn("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
