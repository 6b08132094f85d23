package ws

import (
	"sync"

	"github.com/dropfour/server/internal/metrics"
)

// Hub is the registry of live connections. Besides the flat client set it
// keeps username and game-id indexes so targeted sends and per-game
// broadcasts don't scan every connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	byUser  map[string]map[*Client]bool
	byGame  map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		byUser:  make(map[string]map[*Client]bool),
		byGame:  make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = true
	metrics.ConnectedClients.Set(float64(len(h.clients)))
}

// Unregister removes a connection and closes its send channel. Safe to
// call more than once per client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}

	delete(h.clients, c)
	h.unindexLocked(c)
	c.closeSend()
	metrics.ConnectedClients.Set(float64(len(h.clients)))
}

// Bind associates a connection with a username and game id, updating both
// indexes atomically. Either value may be empty to leave it unset.
func (h *Hub) Bind(c *Client, username, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}

	h.unindexLocked(c)
	c.username = username
	c.gameID = gameID
	h.indexLocked(c)
}

// BindUserToGame repoints every connection of a username at a game, so a
// player queued under an old game id follows their match into the new one.
func (h *Hub) BindUserToGame(username, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.byUser[username] {
		h.unindexLocked(c)
		c.gameID = gameID
		h.indexLocked(c)
	}
}

// SendToUser delivers to every open connection bound to the username.
func (h *Hub) SendToUser(username string, message []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.byUser[username]))
	for c := range h.byUser[username] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, message)
	}
}

// BroadcastToGame delivers to every connection bound to the game.
func (h *Hub) BroadcastToGame(gameID string, message []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.byGame[gameID]))
	for c := range h.byGame[gameID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.deliver(c, message)
	}
}

// Binding reads a client's username and game id under the hub lock;
// BindUserToGame can repoint a client from another connection's goroutine.
func (h *Hub) Binding(c *Client) (username, gameID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.username, c.gameID
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// deliver queues a message without blocking. A client whose buffer is full
// is considered dead and deregistered; delivery is best-effort.
func (h *Hub) deliver(c *Client, message []byte) {
	if !c.enqueue(message) {
		h.Unregister(c)
	}
}

// indexLocked and unindexLocked maintain the secondary indexes; caller
// holds h.mu.
func (h *Hub) indexLocked(c *Client) {
	if c.username != "" {
		set, ok := h.byUser[c.username]
		if !ok {
			set = make(map[*Client]bool)
			h.byUser[c.username] = set
		}
		set[c] = true
	}
	if c.gameID != "" {
		set, ok := h.byGame[c.gameID]
		if !ok {
			set = make(map[*Client]bool)
			h.byGame[c.gameID] = set
		}
		set[c] = true
	}
}

func (h *Hub) unindexLocked(c *Client) {
	if set, ok := h.byUser[c.username]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.username)
		}
	}
	if set, ok := h.byGame[c.gameID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byGame, c.gameID)
		}
	}
}
