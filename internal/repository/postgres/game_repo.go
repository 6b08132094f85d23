package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dropfour/server/internal/domain"
)

type GameRepo struct {
	db *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

// SaveGame upserts a finished game and, when there is a winner, bumps
// their win count in the same transaction. Keyed by game id so retries
// are idempotent.
func (r *GameRepo) SaveGame(ctx context.Context, g *domain.Game) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	boardJSON, err := json.Marshal(g.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	query := `
	INSERT INTO games (id, player1_username, player2_username, winner, status, is_draw, is_bot_game, started_at, ended_at, board_state)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		winner = EXCLUDED.winner,
		status = EXCLUDED.status,
		is_draw = EXCLUDED.is_draw,
		ended_at = EXCLUDED.ended_at,
		board_state = EXCLUDED.board_state;
	`

	_, err = tx.ExecContext(ctx, query,
		g.ID, g.Player1.Username, g.Player2.Username, g.WinnerUsername(),
		string(g.Status), g.IsDraw, g.IsBotGame, g.StartedAt, g.EndedAt, boardJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %w", err)
	}

	if winner := g.WinnerUsername(); winner != "" && !g.IsDraw {
		if err := incrementWinsTx(ctx, tx, winner); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IncrementWins bumps a player's win count outside a transaction.
func (r *GameRepo) IncrementWins(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, incrementWinsQuery, username)
	if err != nil {
		return fmt.Errorf("failed to increment wins for %s: %w", username, err)
	}
	return nil
}

// TopPlayers returns the leaderboard ordered by wins.
func (r *GameRepo) TopPlayers(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
	SELECT username, wins
	FROM players
	ORDER BY wins DESC, username ASC
	LIMIT $1;
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const incrementWinsQuery = `
INSERT INTO players (username, wins)
VALUES ($1, 1)
ON CONFLICT (username) DO UPDATE SET
	wins = players.wins + 1;
`

func incrementWinsTx(ctx context.Context, tx *sql.Tx, username string) error {
	if _, err := tx.ExecContext(ctx, incrementWinsQuery, username); err != nil {
		return fmt.Errorf("failed to increment wins for %s: %w", username, err)
	}
	return nil
}
