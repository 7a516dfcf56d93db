package storage

import (
	"database/sql"
	"fmt"
)

// RecordNewMatch asynchronously inserts a match row
func (s *Store) RecordNewMatch(record MatchRecord) {
	s.enqueue("match record", func(tx *sql.Tx) error {
		query := `INSERT INTO matches (
			match_id, profile, first_player_id, second_player_id,
			status, winner_id, reason, revision, snapshot_json,
			created_at_utc, updated_at_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.MatchID, record.Profile, record.FirstPlayer, record.SecondPlayer,
			record.Status, record.WinnerID, record.Reason, record.Revision, record.SnapshotJSON,
			record.CreatedAtUTC, record.UpdatedAtUTC,
		)
		return err
	})
}

// UpdateMatchState asynchronously replaces the stored snapshot and outcome
func (s *Store) UpdateMatchState(record MatchRecord) {
	s.enqueue("match update", func(tx *sql.Tx) error {
		query := `UPDATE matches SET
			status = ?, winner_id = ?, reason = ?, revision = ?,
			snapshot_json = ?, updated_at_utc = ?
		WHERE match_id = ?`

		_, err := tx.Exec(query,
			record.Status, record.WinnerID, record.Reason, record.Revision,
			record.SnapshotJSON, record.UpdatedAtUTC, record.MatchID,
		)
		return err
	})
}

// RecordMove asynchronously records one accepted move
func (s *Store) RecordMove(row MoveRow) {
	s.enqueue("move record", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			match_id, turn, player_id, piece_id,
			from_x, from_y, to_x, to_y,
			captured_piece_id, promotion, variant_tag, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			row.MatchID, row.Turn, row.PlayerID, row.PieceID,
			row.FromX, row.FromY, row.ToX, row.ToY,
			row.CapturedPieceID, row.Promotion, row.VariantTag, row.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves asynchronously removes moves from turn onwards
func (s *Store) DeleteUndoneMoves(matchID string, fromTurn int) {
	s.enqueue("undo", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM moves WHERE match_id = ? AND turn >= ?`, matchID, fromTurn)
		return err
	})
}

// DeleteMatch asynchronously removes a match and its moves
func (s *Store) DeleteMatch(matchID string) {
	s.enqueue("match delete", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM matches WHERE match_id = ?`, matchID)
		return err
	})
}

const matchColumns = `match_id, profile, first_player_id, second_player_id,
	status, winner_id, reason, revision, snapshot_json,
	created_at_utc, updated_at_utc`

// QueryMatches retrieves matches with optional filtering. Empty or "*"
// disables a filter.
func (s *Store) QueryMatches(matchID, playerID string) ([]MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE 1=1`
	var args []any

	if matchID != "" && matchID != "*" {
		query += " AND match_id = ?"
		args = append(args, matchID)
	}
	if playerID != "" && playerID != "*" {
		query += " AND (first_player_id = ? OR second_player_id = ?)"
		args = append(args, playerID, playerID)
	}
	query += " ORDER BY created_at_utc DESC"

	return s.queryMatches(query, args...)
}

// LoadOpenMatches returns every match that has not completed
func (s *Store) LoadOpenMatches() ([]MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE status != 'completed' ORDER BY created_at_utc`
	return s.queryMatches(query)
}

func (s *Store) queryMatches(query string, args ...any) ([]MatchRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		err := rows.Scan(
			&m.MatchID, &m.Profile, &m.FirstPlayer, &m.SecondPlayer,
			&m.Status, &m.WinnerID, &m.Reason, &m.Revision, &m.SnapshotJSON,
			&m.CreatedAtUTC, &m.UpdatedAtUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return matches, nil
}

// QueryMoves returns the recorded moves of a match in turn order
func (s *Store) QueryMoves(matchID string) ([]MoveRow, error) {
	rows, err := s.db.Query(`SELECT
		move_id, match_id, turn, player_id, piece_id,
		from_x, from_y, to_x, to_y,
		captured_piece_id, promotion, variant_tag, move_time_utc
	FROM moves WHERE match_id = ? ORDER BY turn`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRow
	for rows.Next() {
		var m MoveRow
		err := rows.Scan(
			&m.MoveID, &m.MatchID, &m.Turn, &m.PlayerID, &m.PieceID,
			&m.FromX, &m.FromY, &m.ToX, &m.ToY,
			&m.CapturedPieceID, &m.Promotion, &m.VariantTag, &m.MoveTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return moves, nil
}
