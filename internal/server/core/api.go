// Package core holds the request and response types of the match API and the
// error codes returned with them.
package core

import "khalistra/internal/engine"

// Request types

type CreateMatchRequest struct {
	Players []string `json:"players" validate:"required,len=2,dive,required,max=64"`
	Profile string   `json:"profile,omitempty" validate:"omitempty,oneof=classic ritual"`
}

type MoveRequest struct {
	PieceID    string          `json:"pieceId" validate:"required,max=64"`
	To         engine.Position `json:"to"`
	PromoteTo  string          `json:"promoteTo,omitempty" validate:"omitempty,max=16"`
	VariantTag string          `json:"variantTag,omitempty" validate:"omitempty,max=64"`
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=500"`
}

type ResignRequest struct {
	PlayerID string `json:"playerId" validate:"required,max=64"`
	Reason   string `json:"reason,omitempty" validate:"omitempty,oneof=surrender timeout"`
}

// Response types

// MatchResponse carries the current snapshot. Version counts the commits to
// the match and is the long-poll cursor.
type MatchResponse struct {
	MatchID  string              `json:"matchId"`
	Version  int                 `json:"version"`
	Snapshot engine.Snapshot     `json:"snapshot"`
	Event    *engine.UpdateEvent `json:"event,omitempty"`
	Finish   *engine.FinishEvent `json:"finish,omitempty"`
}

type LegalMovesResponse struct {
	MatchID string             `json:"matchId"`
	PieceID string             `json:"pieceId"`
	Moves   []engine.LegalMove `json:"moves"`
}

type BoardResponse struct {
	MatchID string `json:"matchId"`
	Board   string `json:"board"` // ASCII representation
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
