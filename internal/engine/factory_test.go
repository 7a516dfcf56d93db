package engine

import (
	"errors"
	"testing"
)

func TestCreateInitialStateClassic(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)

	if s.BoardSize != 8 {
		t.Fatalf("board size = %d, want 8", s.BoardSize)
	}
	if len(s.Pieces) != 32 {
		t.Fatalf("piece count = %d, want 32", len(s.Pieces))
	}
	if s.Turn != 1 {
		t.Errorf("turn = %d, want 1", s.Turn)
	}
	if s.ActivePlayer != light {
		t.Errorf("active player = %q, want %q", s.ActivePlayer, light)
	}
	if s.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", s.Status, StatusInProgress)
	}
	if len(s.History) != 0 {
		t.Errorf("history length = %d, want 0", len(s.History))
	}
	if s.Resolution != nil || s.WinnerID != "" || s.CheckedPlayerID != "" {
		t.Errorf("fresh state carries a resolution: %+v", s)
	}

	kings := map[string]int{}
	pawns := 0
	ids := map[string]bool{}
	squares := map[Position]bool{}
	for _, pc := range s.Pieces {
		if ids[pc.ID] {
			t.Errorf("duplicate piece id %q", pc.ID)
		}
		ids[pc.ID] = true
		if squares[pc.Position] {
			t.Errorf("two pieces on %+v", pc.Position)
		}
		squares[pc.Position] = true
		switch pc.Kind {
		case King:
			kings[pc.OwnerID]++
		case Pawn:
			pawns++
		}
		if pc.HasMoved {
			t.Errorf("%s starts as moved", pc.ID)
		}
	}
	if kings[light] != 1 || kings[shadow] != 1 {
		t.Errorf("kings per side = %v, want one each", kings)
	}
	if pawns != 16 {
		t.Errorf("pawns = %d, want 16", pawns)
	}
}

func TestCreateInitialStateLayout(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)

	tests := []struct {
		id   string
		want Position
	}{
		{"light.king.4", Position{X: 4, Y: 0}},
		{"light.queen.3", Position{X: 3, Y: 0}},
		{"light.pawn.0", Position{X: 0, Y: 1}},
		{"shadow.king.4", Position{X: 4, Y: 7}},
		{"shadow.queen.3", Position{X: 3, Y: 7}},
		{"shadow.pawn.7", Position{X: 7, Y: 6}},
		{"shadow.knight.6", Position{X: 6, Y: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			pc, ok := FindPieceByID(s.Pieces, tt.id)
			if !ok {
				t.Fatalf("piece %q missing", tt.id)
			}
			if !pc.Position.Equal(tt.want) {
				t.Errorf("position = %+v, want %+v", pc.Position, tt.want)
			}
		})
	}
}

func TestCreateInitialStateRejectsPlayers(t *testing.T) {
	eng := newEngine(t, Classic())

	tests := []struct {
		name    string
		players []string
	}{
		{"none", nil},
		{"single", []string{light}},
		{"three", []string{light, shadow, "third"}},
		{"duplicate", []string{light, light}},
		{"empty id", []string{light, ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := eng.CreateInitialState("m", tt.players)
			if !errors.Is(err, ErrInvalidPlayers) {
				t.Fatalf("err = %v, want ErrInvalidPlayers", err)
			}
			if s.MatchID != "" || s.Pieces != nil {
				t.Errorf("failed creation returned a snapshot: %+v", s)
			}
		})
	}
}

func TestCreateInitialStateRitual(t *testing.T) {
	eng := newEngine(t, Ritual())
	s := initial(t, eng)

	if s.BoardSize != 5 || s.Profile != ProfileRitual {
		t.Fatalf("board = %d profile = %q", s.BoardSize, s.Profile)
	}
	if len(s.Pieces) != 10 {
		t.Fatalf("piece count = %d, want 10", len(s.Pieces))
	}
	dancer, ok := FindPieceByID(s.Pieces, "shadow.dancer.2")
	if !ok || !dancer.Position.Equal(Position{X: 2, Y: 4}) {
		t.Errorf("shadow dancer = %+v, found %v", dancer, ok)
	}
}

func TestProfileValidation(t *testing.T) {
	broken := Classic()
	broken.DefaultPromotion = King

	noRoyal := Classic()
	noRoyal.BackRank = []PieceKind{Rook, Knight, Bishop, Queen, Queen, Bishop, Knight, Rook}

	shortRank := Ritual()
	shortRank.BackRank = shortRank.BackRank[:4]

	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"classic", Classic(), false},
		{"ritual", Ritual(), false},
		{"default promotion outside set", broken, true},
		{"no royal on back rank", noRoyal, true},
		{"short back rank", shortRank, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.profile)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("err = %v, want ErrInvalidProfile", err)
			}
		})
	}

	if _, err := ForProfile("hexagonal"); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("unknown profile err = %v", err)
	}
}
