package game

import (
	"errors"
	"strings"
	"testing"
	"time"

	"khalistra/internal/engine"
)

func classicStart(t *testing.T) (*engine.Engine, engine.Snapshot) {
	t.Helper()
	eng, err := engine.New(engine.Classic())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	s, err := eng.CreateInitialState("m-1", []string{"light", "shadow"})
	if err != nil {
		t.Fatalf("initial state: %v", err)
	}
	return eng, s
}

func TestToASCII(t *testing.T) {
	_, s := classicStart(t)

	lines := strings.Split(ToASCII(s), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if lines[0] != "  a b c d e f g h" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "8 r n b q k b n r  8" {
		t.Errorf("top rank = %q", lines[1])
	}
	if lines[4] != "5 . . . . . . . .  5" {
		t.Errorf("empty rank = %q", lines[4])
	}
	if lines[8] != "1 R N B Q K B N R  1" {
		t.Errorf("bottom rank = %q", lines[8])
	}
}

func TestGridRitual(t *testing.T) {
	eng, err := engine.New(engine.Ritual())
	if err != nil {
		t.Fatal(err)
	}
	s, err := eng.CreateInitialState("m-2", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	grid := Grid(s)
	if len(grid) != 5 {
		t.Fatalf("grid has %d rows", len(grid))
	}
	if got := string(grid[4]); got != "SODOS" {
		t.Errorf("first player's rank = %q", got)
	}
	if got := string(grid[0]); got != "sodos" {
		t.Errorf("second player's rank = %q", got)
	}
	for _, sym := range grid[2] {
		if sym != 0 {
			t.Errorf("middle rank not empty: %q", grid[2])
			break
		}
	}
}

func TestParseSquare(t *testing.T) {
	tests := []struct {
		square  string
		size    int
		want    engine.Position
		wantErr bool
	}{
		{"a1", 8, engine.Position{X: 0, Y: 0}, false},
		{"e2", 8, engine.Position{X: 4, Y: 1}, false},
		{" H8 ", 8, engine.Position{X: 7, Y: 7}, false},
		{"e5", 5, engine.Position{X: 4, Y: 4}, false},
		{"f1", 5, engine.Position{}, true},
		{"a9", 8, engine.Position{}, true},
		{"a0", 8, engine.Position{}, true},
		{"zz", 8, engine.Position{}, true},
		{"e", 8, engine.Position{}, true},
	}

	for _, tt := range tests {
		got, err := ParseSquare(tt.square, tt.size)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSquare(%q, %d) = %v, want error", tt.square, tt.size, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSquare(%q, %d): %v", tt.square, tt.size, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSquare(%q, %d) = %v, want %v", tt.square, tt.size, got, tt.want)
		}
		if back := Square(got); back != strings.ToLower(strings.TrimSpace(tt.square)) {
			t.Errorf("Square(%v) = %q", got, back)
		}
	}
}

func TestMatchPushAndUndo(t *testing.T) {
	eng, s := classicStart(t)
	start := time.Unix(100, 0)
	m := New(s, start)

	if m.Current().MatchID != "m-1" || m.Version() != 0 {
		t.Fatalf("fresh match id=%q version=%d", m.Current().MatchID, m.Version())
	}

	next, err := eng.ApplyMove(s, engine.MoveCommand{PieceID: "light.pawn.4", To: engine.Position{X: 4, Y: 3}})
	if err != nil {
		t.Fatal(err)
	}
	m.Push(next, start.Add(time.Second))

	if m.Version() != 1 || len(m.Current().History) != 1 {
		t.Fatalf("after push version=%d moves=%d", m.Version(), len(m.Current().History))
	}
	if !m.UpdatedAt().Equal(start.Add(time.Second)) || !m.CreatedAt().Equal(start) {
		t.Errorf("timestamps created=%v updated=%v", m.CreatedAt(), m.UpdatedAt())
	}

	if err := m.UndoMoves(2, start); !errors.Is(err, ErrUndoUnavailable) {
		t.Errorf("undoing past the initial snapshot: %v", err)
	}
	if err := m.UndoMoves(0, start); !errors.Is(err, ErrUndoUnavailable) {
		t.Errorf("undo of zero moves: %v", err)
	}

	if err := m.UndoMoves(1, start.Add(2*time.Second)); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if m.Current().Turn != 1 || len(m.Current().History) != 0 {
		t.Errorf("after undo turn=%d moves=%d", m.Current().Turn, len(m.Current().History))
	}
	// Undo still moves the version forward so long-poll cursors never repeat
	if m.Version() != 2 {
		t.Errorf("version after undo = %d, want 2", m.Version())
	}
}

func TestMatchUndoKeepsCompletedMatch(t *testing.T) {
	eng, s := classicStart(t)
	at := time.Unix(100, 0)
	m := New(s, at)

	next, err := eng.ApplyMove(s, engine.MoveCommand{PieceID: "light.pawn.4", To: engine.Position{X: 4, Y: 3}})
	if err != nil {
		t.Fatal(err)
	}
	m.Push(next, at)
	over, err := eng.Conclude(next, "shadow", engine.ReasonSurrender)
	if err != nil {
		t.Fatal(err)
	}
	m.Push(over, at)

	if err := m.UndoMoves(1, at); !errors.Is(err, engine.ErrMatchCompleted) {
		t.Fatalf("undo of a completed match: %v", err)
	}
	if !m.Current().IsTerminal() || m.Current().Resolution == nil || m.Version() != 2 {
		t.Errorf("completed match changed: status=%s version=%d", m.Current().Status, m.Version())
	}
}

func TestMatchRestore(t *testing.T) {
	_, s := classicStart(t)
	at := time.Unix(50, 0)

	m := Restore(s, 7, at, at)
	if m.Version() != 7 {
		t.Errorf("version = %d", m.Version())
	}
	if err := m.UndoMoves(1, at); err == nil {
		t.Error("restored match undid past its first snapshot")
	}
}
