package ws

import (
	"encoding/json"
	"log"

	"github.com/dropfour/server/internal/domain"
	"github.com/dropfour/server/internal/service/game"
	"github.com/dropfour/server/internal/service/matchmaking"
)

// Handler decodes inbound frames, dispatches them to matchmaking and the
// session manager, and encodes state back out through the hub.
type Handler struct {
	hub         *Hub
	games       *game.Service
	matchmaking *matchmaking.Queue
	publisher   game.Publisher
}

func NewHandler(hub *Hub, games *game.Service, queue *matchmaking.Queue, publisher game.Publisher) *Handler {
	h := &Handler{
		hub:         hub,
		games:       games,
		matchmaking: queue,
		publisher:   publisher,
	}

	games.SetNotifier(h)
	queue.SetBotGameActivatedCallback(h.handleBotGameActivated)
	return h
}

// HandleMessage routes one inbound frame. Protocol errors are answered
// with an ERROR frame to the sender only; they never affect the session.
func (h *Handler) HandleMessage(c *Client, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.sendError(c, "Invalid message format")
		return
	}

	switch env.Type {
	case domain.MsgJoinGame:
		h.handleJoinGame(c, env.Payload)
	case domain.MsgMove:
		h.handleMove(c, env.Payload)
	case domain.MsgReconnect:
		h.handleReconnect(c, env.Payload)
	default:
		h.sendError(c, "Unknown message type")
	}
}

// HandleDisconnect runs when a connection's read pump exits.
func (h *Handler) HandleDisconnect(c *Client) {
	username, gameID := h.hub.Binding(c)
	if username == "" {
		return
	}

	log.Printf("[WS] %s disconnected", username)
	h.matchmaking.Remove(username)

	if gameID != "" && h.publisher != nil {
		if finished, ok := h.games.GameFinished(gameID); ok && !finished {
			h.publisher.Publish(domain.NewPlayerDisconnectedEvent(gameID, username))
		}
	}
}

// GameStateChanged implements game.Notifier: broadcast the new state to
// every connection in the session.
func (h *Handler) GameStateChanged(g *domain.Game) {
	msg, err := domain.GameStateMessage(g)
	if err != nil {
		log.Printf("[WS] Failed to encode state for game %s: %v", g.ID, err)
		return
	}
	h.hub.BroadcastToGame(g.ID, msg)
}

func (h *Handler) handleJoinGame(c *Client, payload json.RawMessage) {
	var data domain.JoinGamePayload
	if err := json.Unmarshal(payload, &data); err != nil || data.Username == "" {
		h.sendError(c, "Invalid join game data")
		return
	}

	g, started, err := h.matchmaking.Join(data.Username)
	if err != nil {
		h.sendError(c, "Failed to join game queue")
		return
	}

	h.hub.Bind(c, data.Username, g.ID)

	if !started {
		h.sendWaiting(c)
		return
	}

	// The waiting player queued under their provisional game id; repoint
	// their connections before announcing the match.
	h.hub.BindUserToGame(g.Player1.Username, g.ID)
	h.sendGameStarted(g.Player1.Username, g.ID)
	h.sendGameStarted(g.Player2.Username, g.ID)

	if h.publisher != nil {
		h.publisher.Publish(domain.NewGameStartedEvent(g))
	}
}

func (h *Handler) handleMove(c *Client, payload json.RawMessage) {
	var data domain.MovePayload
	if err := json.Unmarshal(payload, &data); err != nil || data.Column == nil {
		h.sendError(c, "Invalid move data")
		return
	}

	username, gameID := h.hub.Binding(c)
	g, ok := h.games.GetGame(gameID)
	if !ok {
		h.sendError(c, "Game not found")
		return
	}

	disc, ok := g.DiscOf(username)
	if !ok {
		h.sendError(c, domain.ErrNotYourTurn.Error())
		return
	}

	if err := h.games.ApplyMove(g.ID, disc, *data.Column); err != nil {
		h.sendError(c, err.Error())
	}
	// On success the session manager notified us already and the state
	// went out via GameStateChanged.
}

func (h *Handler) handleReconnect(c *Client, payload json.RawMessage) {
	var data domain.ReconnectPayload
	if err := json.Unmarshal(payload, &data); err != nil || data.Username == "" {
		h.sendError(c, "Invalid reconnect data")
		return
	}

	if data.GameID != "" {
		if g, ok := h.games.GetGame(data.GameID); ok && g.HasParticipant(data.Username) {
			h.rejoin(c, data.Username, g.ID)
			return
		}
	}

	// No usable game id; fall back to searching by username.
	if g, ok := h.games.FindActiveGameByUsername(data.Username); ok {
		h.rejoin(c, data.Username, g.ID)
		return
	}

	h.hub.Bind(c, data.Username, "")
	h.sendError(c, "No active game found")
}

func (h *Handler) rejoin(c *Client, username, gameID string) {
	h.hub.Bind(c, username, gameID)
	log.Printf("[WS] %s reconnected to game %s", username, gameID)

	if msg, err := h.games.GameStateFrame(gameID); err == nil {
		h.hub.SendToUser(username, msg)
	}
}

// handleBotGameActivated fires from the matchmaking deadline timer.
func (h *Handler) handleBotGameActivated(username string, g *domain.Game) {
	h.sendGameStarted(username, g.ID)
}

// sendGameStarted delivers GAME_STARTED followed by a state snapshot. The
// frames are built by the session manager under its lock; a paced bot
// move or the opponent may be mutating the game concurrently.
func (h *Handler) sendGameStarted(username, gameID string) {
	started, state, err := h.games.GameStartFrames(gameID)
	if err != nil {
		return
	}
	h.hub.SendToUser(username, started)
	h.hub.SendToUser(username, state)
}

func (h *Handler) sendWaiting(c *Client) {
	if msg, err := domain.WaitingMessage(); err == nil {
		h.deliver(c, msg)
	}
}

func (h *Handler) sendError(c *Client, message string) {
	msg, err := domain.ErrorMessage(message)
	if err != nil {
		return
	}
	h.deliver(c, msg)
}

func (h *Handler) deliver(c *Client, msg []byte) {
	if !c.enqueue(msg) {
		h.hub.Unregister(c)
	}
}
