package domain

import "time"

// Player is one seat in a game.
type Player struct {
	Username string `json:"username"`
	Disc     Disc   `json:"disc"`
}

// Game holds the full state of one session. All mutation goes through
// ApplyMove; callers are responsible for serializing access.
type Game struct {
	ID          string
	Player1     Player
	Player2     Player
	Board       [][]Disc
	CurrentTurn Disc
	Status      GameStatus
	Winner      *Player
	IsDraw      bool
	IsBotGame   bool
	StartedAt   time.Time
	LastMoveAt  time.Time
	EndedAt     *time.Time
}

// Move records a single placement.
type Move struct {
	GameID string
	Disc   Disc
	Column int
	Row    int
}

// LeaderboardEntry is one row of the win-count leaderboard.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}

// NewGame creates a game. A bot game with no second player yet starts
// WAITING; everything else starts ACTIVE.
func NewGame(id, player1, player2 string, isBotGame bool) *Game {
	status := StatusActive
	if isBotGame && player2 == "" {
		status = StatusWaiting
	}
	if player2 == "" {
		player2 = BotUsername
	}

	now := time.Now()
	return &Game{
		ID:          id,
		Player1:     Player{Username: player1, Disc: Player1},
		Player2:     Player{Username: player2, Disc: Player2},
		Board:       NewBoard(),
		CurrentTurn: Player1,
		Status:      status,
		IsBotGame:   isBotGame,
		StartedAt:   now,
		LastMoveAt:  now,
	}
}

// ApplyMove validates and applies one placement. On any failure the board
// is left untouched. On success exactly one of three things happens: the
// game finishes with a winner, the game finishes as a draw, or the turn
// flips.
func (g *Game) ApplyMove(disc Disc, column int) (int, error) {
	if g.Status != StatusActive {
		return -1, ErrGameNotActive
	}

	if g.CurrentTurn != disc {
		return -1, ErrNotYourTurn
	}

	if !IsValidColumn(column) {
		return -1, ErrInvalidMove
	}
	if IsColumnFull(g.Board, column) {
		return -1, ErrInvalidMove
	}

	row, err := DropDisc(g.Board, column, disc)
	if err != nil {
		return -1, err
	}

	g.LastMoveAt = time.Now()

	if CheckWin(g.Board, row, column, disc) {
		winner := g.playerFor(disc)
		g.Winner = &winner
		g.Status = StatusFinished
		ended := time.Now()
		g.EndedAt = &ended
		return row, nil
	}

	if IsBoardFull(g.Board) {
		g.IsDraw = true
		g.Status = StatusFinished
		ended := time.Now()
		g.EndedAt = &ended
		return row, nil
	}

	g.CurrentTurn = Opponent(disc)
	return row, nil
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusFinished
}

// DiscOf resolves a participant's side by username.
func (g *Game) DiscOf(username string) (Disc, bool) {
	switch username {
	case g.Player1.Username:
		return g.Player1.Disc, true
	case g.Player2.Username:
		return g.Player2.Disc, true
	}
	return Empty, false
}

func (g *Game) HasParticipant(username string) bool {
	_, ok := g.DiscOf(username)
	return ok
}

// WinnerUsername returns the winner's name, or "" for a draw or an
// unfinished game.
func (g *Game) WinnerUsername() string {
	if g.Winner == nil {
		return ""
	}
	return g.Winner.Username
}

func (g *Game) playerFor(disc Disc) Player {
	if disc == Player1 {
		return g.Player1
	}
	return g.Player2
}
