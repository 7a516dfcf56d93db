package engine

import "testing"

const (
	light  = "light"
	shadow = "shadow"
)

var duel = []string{light, shadow}

func newEngine(t *testing.T, profile Profile) *Engine {
	t.Helper()
	eng, err := New(profile)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return eng
}

func initial(t *testing.T, eng *Engine) Snapshot {
	t.Helper()
	s, err := eng.CreateInitialState("match-test", duel)
	if err != nil {
		t.Fatalf("create initial state: %v", err)
	}
	return s
}

// custom replaces the pieces of a fresh snapshot
func custom(t *testing.T, eng *Engine, active string, pieces ...Piece) Snapshot {
	t.Helper()
	s := initial(t, eng)
	s.Pieces = pieces
	s.ActivePlayer = active
	return s
}

func place(owner string, kind PieceKind, index, x, y int) Piece {
	return Piece{
		ID:       BuildPieceID(owner, kind, index),
		OwnerID:  owner,
		Kind:     kind,
		Position: Position{X: x, Y: y},
	}
}

func mustMove(t *testing.T, eng *Engine, s Snapshot, pieceID string, x, y int) Snapshot {
	t.Helper()
	next, err := eng.ApplyMove(s, MoveCommand{PieceID: pieceID, To: Position{X: x, Y: y}})
	if err != nil {
		t.Fatalf("move %s to (%d,%d): %v", pieceID, x, y, err)
	}
	return next
}

func hasDestination(moves []LegalMove, x, y int) bool {
	for _, mv := range moves {
		if mv.To.X == x && mv.To.Y == y {
			return true
		}
	}
	return false
}
