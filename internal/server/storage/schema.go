package storage

import "time"

// MatchRecord is a row of the matches table. SnapshotJSON holds the current
// snapshot so a running match survives a restart.
type MatchRecord struct {
	MatchID      string    `db:"match_id"`
	Profile      string    `db:"profile"`
	FirstPlayer  string    `db:"first_player_id"`
	SecondPlayer string    `db:"second_player_id"`
	Status       string    `db:"status"`
	WinnerID     string    `db:"winner_id"`
	Reason       string    `db:"reason"`
	Revision     int       `db:"revision"`
	SnapshotJSON string    `db:"snapshot_json"`
	CreatedAtUTC time.Time `db:"created_at_utc"`
	UpdatedAtUTC time.Time `db:"updated_at_utc"`
}

// MoveRow is a row of the moves table
type MoveRow struct {
	MoveID          int64     `db:"move_id"`
	MatchID         string    `db:"match_id"`
	Turn            int       `db:"turn"`
	PlayerID        string    `db:"player_id"`
	PieceID         string    `db:"piece_id"`
	FromX           int       `db:"from_x"`
	FromY           int       `db:"from_y"`
	ToX             int       `db:"to_x"`
	ToY             int       `db:"to_y"`
	CapturedPieceID string    `db:"captured_piece_id"`
	Promotion       string    `db:"promotion"`
	VariantTag      string    `db:"variant_tag"`
	MoveTimeUTC     time.Time `db:"move_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS matches (
	match_id TEXT PRIMARY KEY,
	profile TEXT NOT NULL,
	first_player_id TEXT NOT NULL,
	second_player_id TEXT NOT NULL,
	status TEXT NOT NULL,
	winner_id TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	revision INTEGER NOT NULL DEFAULT 0,
	snapshot_json TEXT NOT NULL,
	created_at_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id TEXT NOT NULL,
	turn INTEGER NOT NULL,
	player_id TEXT NOT NULL,
	piece_id TEXT NOT NULL,
	from_x INTEGER NOT NULL,
	from_y INTEGER NOT NULL,
	to_x INTEGER NOT NULL,
	to_y INTEGER NOT NULL,
	captured_piece_id TEXT NOT NULL DEFAULT '',
	promotion TEXT NOT NULL DEFAULT '',
	variant_tag TEXT NOT NULL DEFAULT '',
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (match_id) REFERENCES matches(match_id) ON DELETE CASCADE,
	UNIQUE(match_id, turn)
);

CREATE INDEX IF NOT EXISTS idx_moves_match_id ON moves(match_id);
CREATE INDEX IF NOT EXISTS idx_matches_first_player ON matches(first_player_id);
CREATE INDEX IF NOT EXISTS idx_matches_second_player ON matches(second_player_id);
CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
`
