package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameStatuses(t *testing.T) {
	pvp := NewGame("g1", "alice", "bob", false)
	assert.Equal(t, StatusActive, pvp.Status)
	assert.Equal(t, "bob", pvp.Player2.Username)
	assert.Equal(t, Player1, pvp.CurrentTurn)

	pending := NewGame("g2", "alice", "", true)
	assert.Equal(t, StatusWaiting, pending.Status)
	assert.Equal(t, BotUsername, pending.Player2.Username)
	assert.True(t, pending.IsBotGame)
}

func TestApplyMoveAlternatesTurns(t *testing.T) {
	g := NewGame("g1", "alice", "bob", false)

	row, err := g.ApplyMove(Player1, 3)
	require.NoError(t, err)
	assert.Equal(t, Rows-1, row)
	assert.Equal(t, Player2, g.CurrentTurn)

	row, err = g.ApplyMove(Player2, 3)
	require.NoError(t, err)
	assert.Equal(t, Rows-2, row)
	assert.Equal(t, Player1, g.CurrentTurn)
}

func TestApplyMoveRejections(t *testing.T) {
	g := NewGame("g1", "alice", "bob", false)

	// A rejected move leaves the game exactly as it was.
	assertUnchanged := func(t *testing.T, g *Game, board [][]Disc, turn Disc, status GameStatus) {
		t.Helper()
		assert.Equal(t, board, g.Board)
		assert.Equal(t, turn, g.CurrentTurn)
		assert.Equal(t, status, g.Status)
	}

	snapshot := CopyBoard(g.Board)
	_, err := g.ApplyMove(Player2, 3)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assertUnchanged(t, g, snapshot, Player1, StatusActive)

	_, err = g.ApplyMove(Player1, 7)
	assert.ErrorIs(t, err, ErrInvalidMove)
	assertUnchanged(t, g, snapshot, Player1, StatusActive)

	_, err = g.ApplyMove(Player1, -1)
	assert.ErrorIs(t, err, ErrInvalidMove)
	assertUnchanged(t, g, snapshot, Player1, StatusActive)

	for i := 0; i < Rows/2; i++ {
		_, err = g.ApplyMove(Player1, 0)
		require.NoError(t, err)
		_, err = g.ApplyMove(Player2, 0)
		require.NoError(t, err)
	}
	snapshot = CopyBoard(g.Board)
	_, err = g.ApplyMove(Player1, 0)
	assert.ErrorIs(t, err, ErrInvalidMove)
	assertUnchanged(t, g, snapshot, Player1, StatusActive)

	waiting := NewGame("g2", "alice", "", true)
	_, err = waiting.ApplyMove(Player1, 3)
	assert.ErrorIs(t, err, ErrGameNotActive)
	assertUnchanged(t, waiting, NewBoard(), Player1, StatusWaiting)
}

func TestApplyMoveWin(t *testing.T) {
	g := NewGame("g1", "alice", "bob", false)
	moves := []struct {
		disc Disc
		col  int
	}{
		{Player1, 0}, {Player2, 6},
		{Player1, 1}, {Player2, 6},
		{Player1, 2}, {Player2, 6},
		{Player1, 3},
	}
	for _, m := range moves {
		_, err := g.ApplyMove(m.disc, m.col)
		require.NoError(t, err)
	}

	assert.True(t, g.IsFinished())
	require.NotNil(t, g.Winner)
	assert.Equal(t, "alice", g.Winner.Username)
	assert.Equal(t, "alice", g.WinnerUsername())
	assert.False(t, g.IsDraw)
	assert.NotNil(t, g.EndedAt)

	snapshot := CopyBoard(g.Board)
	_, err := g.ApplyMove(Player2, 5)
	assert.ErrorIs(t, err, ErrGameNotActive)
	assert.Equal(t, snapshot, g.Board)
}

func TestApplyMoveDraw(t *testing.T) {
	g := NewGame("g1", "alice", "bob", false)

	// Fill every cell but the top of column 6 with a winless pattern:
	// columns 0/1/4/5 alternate bottom-up P1 P2..., columns 2/3/6 the
	// reverse, so no axis ever lines up four.
	alt := []Disc{Player2, Player1, Player2, Player1, Player2, Player1}
	rev := []Disc{Player1, Player2, Player1, Player2, Player1, Player2}
	for row := 0; row < Rows; row++ {
		for _, col := range []int{0, 1, 4, 5} {
			g.Board[row][col] = alt[row]
		}
		for _, col := range []int{2, 3, 6} {
			g.Board[row][col] = rev[row]
		}
	}
	g.Board[0][6] = Empty

	row, err := g.ApplyMove(Player1, 6)
	require.NoError(t, err)
	assert.Equal(t, 0, row)
	assert.True(t, g.IsFinished())
	assert.True(t, g.IsDraw)
	assert.Nil(t, g.Winner)
	assert.Empty(t, g.WinnerUsername())
}

func TestDiscOf(t *testing.T) {
	g := NewGame("g1", "alice", "bob", false)

	disc, ok := g.DiscOf("alice")
	assert.True(t, ok)
	assert.Equal(t, Player1, disc)

	disc, ok = g.DiscOf("bob")
	assert.True(t, ok)
	assert.Equal(t, Player2, disc)

	_, ok = g.DiscOf("mallory")
	assert.False(t, ok)
	assert.True(t, g.HasParticipant("alice"))
	assert.False(t, g.HasParticipant("mallory"))
}
