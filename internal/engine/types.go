// Package engine implements the rules of a two-player chess-family game over
// immutable snapshots. Every exported operation is a pure function of its
// inputs; callers own storage and serialization of snapshots per match.
package engine

type PieceKind string

const (
	King   PieceKind = "king"
	Queen  PieceKind = "queen"
	Rook   PieceKind = "rook"
	Bishop PieceKind = "bishop"
	Knight PieceKind = "knight"
	Pawn   PieceKind = "pawn"

	// Ritual board kinds
	Sentinel PieceKind = "sentinel"
	Oracle   PieceKind = "oracle"
	Dancer   PieceKind = "dancer"
)

type Status string

const (
	StatusAwaiting   Status = "awaiting"
	StatusInProgress Status = "in-progress"
	StatusCheck      Status = "check"
	StatusRitual     Status = "ritual"
	StatusCompleted  Status = "completed"
)

// Reason explains why a match reached StatusCompleted
type Reason string

const (
	ReasonCheckmate Reason = "checkmate"
	ReasonStalemate Reason = "stalemate"
	ReasonTimeout   Reason = "timeout"
	ReasonSurrender Reason = "surrender"
	ReasonRitual    Reason = "ritual"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Piece struct {
	ID       string    `json:"id"`
	OwnerID  string    `json:"ownerId"`
	Kind     PieceKind `json:"type"`
	Label    string    `json:"label,omitempty"`
	Position Position  `json:"position"`
	HasMoved bool      `json:"hasMoved"`
}

type Resolution struct {
	Reason   Reason `json:"reason"`
	WinnerID string `json:"winnerId,omitempty"`
}

// MoveCommand is a move submitted by the active player.
// VariantTag is carried into history untouched and never affects legality.
type MoveCommand struct {
	PieceID    string    `json:"pieceId"`
	To         Position  `json:"to"`
	PromoteTo  PieceKind `json:"promoteTo,omitempty"`
	VariantTag string    `json:"variantTag,omitempty"`
}

// MoveRecord is one accepted ply in a snapshot's history
type MoveRecord struct {
	MoveCommand
	From              Position  `json:"from"`
	Turn              int       `json:"turn"`
	CapturedPieceID   string    `json:"capturedPieceId,omitempty"`
	CapturedPieceKind PieceKind `json:"capturedPieceType,omitempty"`
	Promotion         PieceKind `json:"promotion,omitempty"`
	Check             bool      `json:"check,omitempty"`
	Checkmate         bool      `json:"checkmate,omitempty"`
	Stalemate         bool      `json:"stalemate,omitempty"`
	WinnerID          string    `json:"winnerId,omitempty"`
}

type LegalMove struct {
	To        Position  `json:"to"`
	Capture   bool      `json:"capture,omitempty"`
	Promotion PieceKind `json:"promotion,omitempty"`
}

// Snapshot is the complete state of a match after a given number of plies.
// Snapshots are values: operations return new snapshots and never write to
// the Pieces or History slices of their input.
type Snapshot struct {
	MatchID         string       `json:"matchId"`
	Profile         string       `json:"profile"`
	BoardSize       int          `json:"boardSize"`
	Turn            int          `json:"turn"`
	ActivePlayer    string       `json:"activePlayer"`
	Players         [2]string    `json:"players"`
	Status          Status       `json:"status"`
	WinnerID        string       `json:"winnerId,omitempty"`
	Resolution      *Resolution  `json:"resolution,omitempty"`
	CheckedPlayerID string       `json:"checkedPlayerId,omitempty"`
	Pieces          []Piece      `json:"pieces"`
	History         []MoveRecord `json:"history"`
}

// IsTerminal reports whether the match accepts no further moves
func (s Snapshot) IsTerminal() bool {
	return s.Status == StatusCompleted
}
