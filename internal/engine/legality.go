package engine

import "fmt"

type projection struct {
	pieces    []Piece
	captured  *Piece
	promotion PieceKind
}

// project builds the piece list after moving piece to dest. The input slice
// is left untouched.
func (e *Engine) project(pieces []Piece, piece Piece, dest Position, promotion PieceKind) projection {
	var result projection
	if occupant, ok := FindPieceAt(pieces, dest); ok && occupant.ID != piece.ID {
		captured := occupant
		result.captured = &captured
		pieces = RemovePiece(pieces, occupant.ID)
	}

	moved := piece
	if promotion != "" && promotion != piece.Kind {
		bp, _ := e.profile.blueprint(promotion)
		moved.Kind = promotion
		moved.Label = bp.Label
		result.promotion = promotion
	}
	moved.Position = dest
	moved.HasMoved = true

	result.pieces = ReplacePiece(pieces, moved)
	return result
}

// leavesRoyalThreatened simulates the move and reports whether the mover's
// royal piece would be attacked afterwards
func (e *Engine) leavesRoyalThreatened(s Snapshot, piece Piece, move LegalMove) (bool, error) {
	simulated := s
	simulated.Pieces = e.project(s.Pieces, piece, move.To, move.Promotion).pieces
	return e.royalThreatened(simulated, piece.OwnerID)
}

func (e *Engine) legalMovesForPiece(s Snapshot, piece Piece) ([]LegalMove, error) {
	candidates := Candidates(e.profile, s, piece, IntentMove)
	if !e.profile.hasCheck() {
		return candidates, nil
	}

	legal := make([]LegalMove, 0, len(candidates))
	for _, mv := range candidates {
		threatened, err := e.leavesRoyalThreatened(s, piece, mv)
		if err != nil {
			return nil, err
		}
		if !threatened {
			legal = append(legal, mv)
		}
	}
	return legal, nil
}

// LegalMoves lists the moves of a piece that do not expose its owner's royal
// piece. It does not consider whose turn it is.
func (e *Engine) LegalMoves(s Snapshot, pieceID string) ([]LegalMove, error) {
	if err := e.checkProfile(s); err != nil {
		return nil, err
	}
	piece, ok := FindPieceByID(s.Pieces, pieceID)
	if !ok {
		return nil, fmt.Errorf("%w: piece %q", ErrNotFound, pieceID)
	}
	return e.legalMovesForPiece(s, piece)
}

// LegalMovesFor is LegalMoves restricted to the acting player: pieces of any
// other owner, and any piece once the match is over, have no moves.
func (e *Engine) LegalMovesFor(s Snapshot, pieceID, playerID string) ([]LegalMove, error) {
	moves, err := e.LegalMoves(s, pieceID)
	if err != nil {
		return nil, err
	}
	piece, _ := FindPieceByID(s.Pieces, pieceID)
	if piece.OwnerID != playerID || s.IsTerminal() {
		return []LegalMove{}, nil
	}
	return moves, nil
}
