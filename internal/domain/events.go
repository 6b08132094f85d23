package domain

import "time"

// EventType identifies an analytics event.
type EventType string

const (
	EventGameStarted        EventType = "GAME_STARTED"
	EventMovePlayed         EventType = "MOVE_PLAYED"
	EventGameEnded          EventType = "GAME_ENDED"
	EventBotGameStarted     EventType = "BOT_GAME_STARTED"
	EventPlayerDisconnected EventType = "PLAYER_DISCONNECTED"
)

// GameEvent is the envelope published to the analytics pipeline. Data is
// one of the *Data structs below; the constructors keep the pairing of
// type tag and payload closed.
type GameEvent struct {
	Type      EventType `json:"type"`
	GameID    string    `json:"gameID"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

type GameStartedData struct {
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
	IsBotGame bool   `json:"isBotGame"`
}

type MovePlayedData struct {
	Player int `json:"player"`
	Column int `json:"column"`
	Row    int `json:"row"`
}

type GameEndedData struct {
	Winner  string `json:"winner"`
	IsDraw  bool   `json:"isDraw"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

type PlayerDisconnectedData struct {
	Player string `json:"player"`
}

func NewGameStartedEvent(g *Game) GameEvent {
	return newEvent(EventGameStarted, g.ID, GameStartedData{
		Player1:   g.Player1.Username,
		Player2:   g.Player2.Username,
		IsBotGame: g.IsBotGame,
	})
}

func NewBotGameStartedEvent(g *Game) GameEvent {
	return newEvent(EventBotGameStarted, g.ID, GameStartedData{
		Player1:   g.Player1.Username,
		Player2:   g.Player2.Username,
		IsBotGame: true,
	})
}

func NewMovePlayedEvent(gameID string, move Move) GameEvent {
	return newEvent(EventMovePlayed, gameID, MovePlayedData{
		Player: int(move.Disc),
		Column: move.Column,
		Row:    move.Row,
	})
}

func NewGameEndedEvent(g *Game) GameEvent {
	return newEvent(EventGameEnded, g.ID, GameEndedData{
		Winner:  g.WinnerUsername(),
		IsDraw:  g.IsDraw,
		Player1: g.Player1.Username,
		Player2: g.Player2.Username,
	})
}

func NewPlayerDisconnectedEvent(gameID, username string) GameEvent {
	return newEvent(EventPlayerDisconnected, gameID, PlayerDisconnectedData{
		Player: username,
	})
}

func newEvent(t EventType, gameID string, data any) GameEvent {
	return GameEvent{
		Type:      t,
		GameID:    gameID,
		Timestamp: time.Now(),
		Data:      data,
	}
}
