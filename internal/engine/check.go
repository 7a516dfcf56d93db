package engine

import "fmt"

func (e *Engine) findRoyal(s Snapshot, playerID string) (Piece, error) {
	for _, pc := range s.Pieces {
		if pc.OwnerID == playerID && pc.Kind == e.profile.RoyalKind {
			return pc, nil
		}
	}
	return Piece{}, fmt.Errorf("%w: %s for player %q", ErrNotFound, e.profile.RoyalKind, playerID)
}

// royalThreatened is false for profiles without a royal kind
func (e *Engine) royalThreatened(s Snapshot, playerID string) (bool, error) {
	if !e.profile.hasCheck() {
		return false, nil
	}
	royal, err := e.findRoyal(s, playerID)
	if err != nil {
		return false, err
	}
	for _, pc := range s.Pieces {
		if pc.OwnerID == playerID {
			continue
		}
		for _, mv := range Candidates(e.profile, s, pc, IntentThreat) {
			if mv.To.Equal(royal.Position) {
				return true, nil
			}
		}
	}
	return false, nil
}

// IsKingInCheck reports whether any opposing piece threatens the player's
// king. A missing king is an invariant violation reported as ErrNotFound.
func (e *Engine) IsKingInCheck(s Snapshot, playerID string) (bool, error) {
	if err := e.checkProfile(s); err != nil {
		return false, err
	}
	return e.royalThreatened(s, playerID)
}

// CountLegalMoves sums the legal moves of every piece the player owns
func (e *Engine) CountLegalMoves(s Snapshot, playerID string) (int, error) {
	if err := e.checkProfile(s); err != nil {
		return 0, err
	}
	return e.countLegalMoves(s, playerID)
}

func (e *Engine) countLegalMoves(s Snapshot, playerID string) (int, error) {
	total := 0
	for _, pc := range s.Pieces {
		if pc.OwnerID != playerID {
			continue
		}
		moves, err := e.legalMovesForPiece(s, pc)
		if err != nil {
			return 0, err
		}
		total += len(moves)
	}
	return total, nil
}
