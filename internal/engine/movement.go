package engine

import "fmt"

// Intent selects what the generator answers: where a piece may move, or
// which squares it threatens for check detection.
type Intent int

const (
	IntentMove Intent = iota
	IntentThreat
)

// Candidates returns the pattern-valid destinations of piece without
// considering the safety of its own royal piece.
func Candidates(profile Profile, s Snapshot, piece Piece, intent Intent) []LegalMove {
	bp, ok := profile.blueprint(piece.Kind)
	if !ok {
		return nil
	}

	switch bp.Family {
	case FamilySlide:
		return rayMoves(s, piece, bp.Directions, bp.MaxRange)
	case FamilyStep:
		return rayMoves(s, piece, bp.Directions, 1)
	case FamilyLeap:
		return leapMoves(s, piece, bp.Directions)
	case FamilyPawn:
		return pawnMoves(profile, s, piece, intent)
	default:
		panic(fmt.Sprintf("engine: unhandled movement family %s for %q", bp.Family, piece.Kind))
	}
}

// rayMoves walks each direction until the edge, a friendly piece (excluded)
// or an enemy piece (included). maxSteps of 0 leaves the ray unbounded.
func rayMoves(s Snapshot, piece Piece, directions []Position, maxSteps int) []LegalMove {
	var moves []LegalMove
	for _, dir := range directions {
		target := piece.Position.add(dir)
		for steps := 1; InBounds(target, s.BoardSize); steps++ {
			occupant, occupied := FindPieceAt(s.Pieces, target)
			if occupied && occupant.OwnerID == piece.OwnerID {
				break
			}
			moves = append(moves, LegalMove{To: target, Capture: occupied})
			if occupied || (maxSteps > 0 && steps >= maxSteps) {
				break
			}
			target = target.add(dir)
		}
	}
	return moves
}

func leapMoves(s Snapshot, piece Piece, offsets []Position) []LegalMove {
	var moves []LegalMove
	for _, delta := range offsets {
		target := piece.Position.add(delta)
		if !InBounds(target, s.BoardSize) {
			continue
		}
		occupant, occupied := FindPieceAt(s.Pieces, target)
		if occupied && occupant.OwnerID == piece.OwnerID {
			continue
		}
		moves = append(moves, LegalMove{To: target, Capture: occupied})
	}
	return moves
}

// pawnMoves pushes forward onto empty squares and captures diagonally. Under
// IntentThreat both forward diagonals count as threatened even when empty.
func pawnMoves(profile Profile, s Snapshot, piece Piece, intent Intent) []LegalMove {
	var moves []LegalMove
	dir := forward(s.Players, piece.OwnerID)
	promotionRank := profile.promotionRank(s.Players, piece.OwnerID)

	promotionAt := func(p Position) PieceKind {
		if p.Y == promotionRank {
			return profile.DefaultPromotion
		}
		return ""
	}

	if intent == IntentMove {
		one := Position{X: piece.Position.X, Y: piece.Position.Y + dir}
		if InBounds(one, s.BoardSize) {
			if _, occupied := FindPieceAt(s.Pieces, one); !occupied {
				moves = append(moves, LegalMove{To: one, Promotion: promotionAt(one)})

				two := Position{X: piece.Position.X, Y: piece.Position.Y + 2*dir}
				if piece.Position.Y == profile.pawnStartRank(s.Players, piece.OwnerID) && InBounds(two, s.BoardSize) {
					if _, blocked := FindPieceAt(s.Pieces, two); !blocked {
						moves = append(moves, LegalMove{To: two, Promotion: promotionAt(two)})
					}
				}
			}
		}
	}

	for _, dx := range []int{-1, 1} {
		target := Position{X: piece.Position.X + dx, Y: piece.Position.Y + dir}
		if !InBounds(target, s.BoardSize) {
			continue
		}
		if intent == IntentThreat {
			moves = append(moves, LegalMove{To: target})
			continue
		}
		if occupant, occupied := FindPieceAt(s.Pieces, target); occupied && occupant.OwnerID != piece.OwnerID {
			moves = append(moves, LegalMove{To: target, Capture: true, Promotion: promotionAt(target)})
		}
	}
	return moves
}

// reachesPromotionRank reports whether a pawn-family piece lands on its last rank
func reachesPromotionRank(profile Profile, s Snapshot, piece Piece, dest Position) bool {
	bp, ok := profile.blueprint(piece.Kind)
	if !ok || bp.Family != FamilyPawn {
		return false
	}
	return dest.Y == profile.promotionRank(s.Players, piece.OwnerID)
}
