package engine

import "fmt"

// CreateInitialState lays out both sides and returns the first snapshot of a
// match. The first player owns the low ranks and moves first.
func (e *Engine) CreateInitialState(matchID string, players []string) (Snapshot, error) {
	if len(players) != 2 {
		return Snapshot{}, fmt.Errorf("%w: got %d", ErrInvalidPlayers, len(players))
	}
	if players[0] == "" || players[1] == "" || players[0] == players[1] {
		return Snapshot{}, fmt.Errorf("%w: %q and %q", ErrInvalidPlayers, players[0], players[1])
	}

	pair := [2]string{players[0], players[1]}
	pieces := make([]Piece, 0, 4*e.profile.BoardSize)
	pieces = append(pieces, e.layoutSide(pair[0], 1)...)
	pieces = append(pieces, e.layoutSide(pair[1], -1)...)

	return Snapshot{
		MatchID:      matchID,
		Profile:      e.profile.Name,
		BoardSize:    e.profile.BoardSize,
		Turn:         1,
		ActivePlayer: pair[0],
		Players:      pair,
		Status:       StatusInProgress,
		Pieces:       pieces,
		History:      []MoveRecord{},
	}, nil
}

// layoutSide places the back rank and, when the profile has pawns, the pawn
// rank in front of it. Columns keep the same order for both sides.
func (e *Engine) layoutSide(ownerID string, orientation int) []Piece {
	size := e.profile.BoardSize
	baseRank := 0
	if orientation < 0 {
		baseRank = size - 1
	}

	var pieces []Piece
	for column, kind := range e.profile.BackRank {
		pieces = append(pieces, e.spawn(ownerID, kind, Position{X: column, Y: baseRank}, column))
	}
	if e.profile.Pawns {
		pawnRank := baseRank + orientation
		for column := 0; column < size; column++ {
			pieces = append(pieces, e.spawn(ownerID, Pawn, Position{X: column, Y: pawnRank}, column))
		}
	}
	return pieces
}

func (e *Engine) spawn(ownerID string, kind PieceKind, pos Position, index int) Piece {
	bp, _ := e.profile.blueprint(kind)
	return Piece{
		ID:       BuildPieceID(ownerID, kind, index),
		OwnerID:  ownerID,
		Kind:     kind,
		Label:    bp.Label,
		Position: pos,
	}
}
