package engine

import "strconv"

// Family selects the movement algorithm of a piece kind
type Family int

const (
	FamilySlide Family = iota + 1 // rays until blocked, optionally capped by MaxRange
	FamilyStep                    // rays capped at one square
	FamilyLeap                    // fixed offsets, ignores blockers
	FamilyPawn                    // forward push, double push, diagonal capture
)

func (f Family) String() string {
	switch f {
	case FamilySlide:
		return "slide"
	case FamilyStep:
		return "step"
	case FamilyLeap:
		return "leap"
	case FamilyPawn:
		return "pawn"
	default:
		return "unknown"
	}
}

// Blueprint is the static description of a piece kind
type Blueprint struct {
	Kind       PieceKind
	Label      string
	Family     Family
	Directions []Position
	MaxRange   int // 0 means unbounded
}

var (
	orthogonal = []Position{{X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 0}, {X: -1, Y: 0}}
	diagonal   = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	allAround  = append(append([]Position{}, orthogonal...), diagonal...)

	knightOffsets = []Position{
		{X: 1, Y: 2}, {X: 2, Y: 1}, {X: -1, Y: 2}, {X: -2, Y: 1},
		{X: 1, Y: -2}, {X: 2, Y: -1}, {X: -1, Y: -2}, {X: -2, Y: -1},
	}
)

// ClassicCatalog returns the blueprints of the 8x8 profile
func ClassicCatalog() map[PieceKind]Blueprint {
	return map[PieceKind]Blueprint{
		King:   {Kind: King, Label: "King", Family: FamilyStep, Directions: allAround},
		Queen:  {Kind: Queen, Label: "Queen", Family: FamilySlide, Directions: allAround},
		Rook:   {Kind: Rook, Label: "Rook", Family: FamilySlide, Directions: orthogonal},
		Bishop: {Kind: Bishop, Label: "Bishop", Family: FamilySlide, Directions: diagonal},
		Knight: {Kind: Knight, Label: "Knight", Family: FamilyLeap, Directions: knightOffsets},
		Pawn:   {Kind: Pawn, Label: "Pawn", Family: FamilyPawn},
	}
}

// RitualCatalog returns the blueprints of the 5x5 profile. Every kind moves
// in all eight directions up to its range.
func RitualCatalog() map[PieceKind]Blueprint {
	return map[PieceKind]Blueprint{
		Sentinel: {Kind: Sentinel, Label: "Sentinel", Family: FamilySlide, Directions: allAround, MaxRange: 1},
		Oracle:   {Kind: Oracle, Label: "Oracle", Family: FamilySlide, Directions: allAround, MaxRange: 2},
		Dancer:   {Kind: Dancer, Label: "Dancer", Family: FamilySlide, Directions: allAround, MaxRange: 3},
	}
}

// BuildPieceID derives the stable id of a piece from its spawn slot
func BuildPieceID(ownerID string, kind PieceKind, index int) string {
	return ownerID + "." + string(kind) + "." + strconv.Itoa(index)
}
