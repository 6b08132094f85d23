package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait is the deadline for a single write to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long we tolerate silence before dropping the peer.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames; anything larger closes the
	// connection with a policy violation.
	maxMessageSize = 512

	// sendBufferSize is the per-connection outbound queue.
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one live connection. username and gameID are set by the hub
// on join/reconnect and guarded by the hub's lock.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	username string
	gameID   string

	mu     sync.Mutex
	closed bool
}

// ServeWS upgrades the request and starts the connection's pumps.
func ServeWS(hub *Hub, handler *Handler, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	hub.Register(client)

	go client.writePump()
	go client.readPump(handler)
}

// enqueue queues a message without blocking. Returns false if the client
// is closed or its buffer is full.
func (c *Client) enqueue(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend is called by the hub exactly once per deregistration.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump reads frames and hands them to the protocol handler. It owns
// all reads on the connection.
func (c *Client) readPump(handler *Handler) {
	defer func() {
		handler.HandleDisconnect(c)
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
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if err == websocket.ErrReadLimit {
				// The library has sent the CloseMessageTooBig frame.
				log.Printf("[WS] Dropping peer: frame over %d bytes", maxMessageSize)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}

		handler.HandleMessage(c, data)
	}
}

// writePump drains the send queue and keeps the liveness pings going. It
// owns all writes on the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
