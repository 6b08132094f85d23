package domain

// Disc marks the owner of a cell.
type Disc int

const (
	Empty   Disc = 0
	Player1 Disc = 1
	Player2 Disc = 2
)

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// BotUsername is the reserved name for the computer opponent.
const BotUsername = "Bot"

// Opponent returns the other side.
func Opponent(d Disc) Disc {
	if d == Player1 {
		return Player2
	}
	return Player1
}

// GameStatus tracks the lifecycle of a game.
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusActive   GameStatus = "active"
	StatusFinished GameStatus = "finished"
)

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrGameNotFound  Error = "game not found"
	ErrGameNotActive Error = "game is not active"
	ErrNotYourTurn   Error = "not your turn"
	ErrInvalidMove   Error = "invalid move"
	ErrColumnFull    Error = "column is full"
	ErrNotBotGame    Error = "not a bot game"
)
