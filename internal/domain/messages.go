package domain

import "encoding/json"

// Envelope is the wire frame for both directions: a type tag plus an
// opaque payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound message types.
const (
	MsgJoinGame  = "JOIN_GAME"
	MsgMove      = "MOVE"
	MsgReconnect = "RECONNECT"
)

// Outbound message types.
const (
	MsgGameStarted        = "GAME_STARTED"
	MsgGameStateUpdate    = "GAME_STATE_UPDATE"
	MsgWaitingForOpponent = "WAITING_FOR_OPPONENT"
	MsgError              = "ERROR"
)

type JoinGamePayload struct {
	Username string `json:"username"`
}

// Column is a pointer so a missing field can be told apart from column 0.
type MovePayload struct {
	Column *int `json:"column"`
}

type ReconnectPayload struct {
	Username string `json:"username"`
	GameID   string `json:"game_id,omitempty"`
}

type GameStartedPayload struct {
	GameID      string   `json:"game_id"`
	Player1     string   `json:"player1"`
	Player2     string   `json:"player2"`
	IsBotGame   bool     `json:"is_bot_game"`
	Board       [][]Disc `json:"board"`
	CurrentTurn int      `json:"current_turn"`
	Status      string   `json:"status"`
}

type GameStatePayload struct {
	GameID      string   `json:"game_id"`
	Board       [][]Disc `json:"board"`
	CurrentTurn int      `json:"current_turn"`
	Status      string   `json:"status"`
	Winner      string   `json:"winner"`
	IsDraw      bool     `json:"is_draw"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode wraps a payload in an envelope and marshals the frame.
func Encode(msgType string, payload any) ([]byte, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// GameStartedMessage builds the GAME_STARTED frame for a game.
func GameStartedMessage(g *Game) ([]byte, error) {
	return Encode(MsgGameStarted, GameStartedPayload{
		GameID:      g.ID,
		Player1:     g.Player1.Username,
		Player2:     g.Player2.Username,
		IsBotGame:   g.IsBotGame,
		Board:       g.Board,
		CurrentTurn: int(g.CurrentTurn),
		Status:      string(g.Status),
	})
}

// GameStateMessage builds the GAME_STATE_UPDATE frame for a game.
func GameStateMessage(g *Game) ([]byte, error) {
	return Encode(MsgGameStateUpdate, GameStatePayload{
		GameID:      g.ID,
		Board:       g.Board,
		CurrentTurn: int(g.CurrentTurn),
		Status:      string(g.Status),
		Winner:      g.WinnerUsername(),
		IsDraw:      g.IsDraw,
	})
}

func WaitingMessage() ([]byte, error) {
	return Encode(MsgWaitingForOpponent, nil)
}

func ErrorMessage(message string) ([]byte, error) {
	return Encode(MsgError, ErrorPayload{Message: message})
}
