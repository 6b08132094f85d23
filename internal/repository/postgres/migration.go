package postgres

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	player1_username TEXT NOT NULL,
	player2_username TEXT NOT NULL,
	winner TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	is_draw BOOLEAN NOT NULL DEFAULT FALSE,
	is_bot_game BOOLEAN NOT NULL DEFAULT FALSE,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ,
	board_state JSONB
);

CREATE TABLE IF NOT EXISTS players (
	username TEXT PRIMARY KEY,
	wins INT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_players_wins ON players (wins DESC);
`

// RunMigrations initializes the schema. The statements are idempotent so
// running them on every startup is safe.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
