package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestApplyMoveAdvancesTurn(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)

	next := mustMove(t, eng, s, "light.pawn.4", 4, 2)

	moved, _ := FindPieceByID(next.Pieces, "light.pawn.4")
	if !moved.Position.Equal(Position{X: 4, Y: 2}) || !moved.HasMoved {
		t.Errorf("moved pawn = %+v", moved)
	}
	if next.Turn != s.Turn+1 {
		t.Errorf("turn = %d, want %d", next.Turn, s.Turn+1)
	}
	if next.ActivePlayer != shadow {
		t.Errorf("active player = %q, want %q", next.ActivePlayer, shadow)
	}
	if len(next.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(next.History))
	}
	rec := next.History[0]
	if rec.PieceID != "light.pawn.4" || rec.Turn != 1 || !rec.From.Equal(Position{X: 4, Y: 1}) {
		t.Errorf("record = %+v", rec)
	}

	// input snapshot is untouched
	orig, _ := FindPieceByID(s.Pieces, "light.pawn.4")
	if !orig.Position.Equal(Position{X: 4, Y: 1}) || orig.HasMoved || len(s.History) != 0 {
		t.Errorf("input snapshot mutated: %+v, history %d", orig, len(s.History))
	}
}

func TestApplyMoveIsDeterministic(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)
	cmd := MoveCommand{PieceID: "light.knight.6", To: Position{X: 5, Y: 2}, VariantTag: "card-7"}

	a, errA := eng.ApplyMove(s, cmd)
	b, errB := eng.ApplyMove(s, cmd)
	if errA != nil || errB != nil {
		t.Fatalf("apply: %v / %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different snapshots")
	}
	if a.History[0].VariantTag != "card-7" {
		t.Errorf("variant tag not carried: %+v", a.History[0])
	}
}

func TestApplyMoveRejections(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)

	tests := []struct {
		name string
		cmd  MoveCommand
		want error
	}{
		{"unknown piece", MoveCommand{PieceID: "ghost", To: Position{X: 0, Y: 2}}, ErrNotFound},
		{"inactive player", MoveCommand{PieceID: "shadow.knight.1", To: Position{X: 0, Y: 5}}, ErrTurnViolation},
		{"off board", MoveCommand{PieceID: "light.knight.1", To: Position{X: -1, Y: 2}}, ErrOutOfBounds},
		{"same square", MoveCommand{PieceID: "light.knight.1", To: Position{X: 1, Y: 0}}, ErrNoOpMove},
		{"wrong pattern", MoveCommand{PieceID: "light.bishop.2", To: Position{X: 4, Y: 2}}, ErrIllegalMove},
		{"pawn triple step", MoveCommand{PieceID: "light.pawn.3", To: Position{X: 3, Y: 4}}, ErrIllegalMove},
		{"promotion off last rank", MoveCommand{PieceID: "light.pawn.3", To: Position{X: 3, Y: 3}, PromoteTo: Queen}, ErrInvalidPromotion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := initial(t, eng)
			next, err := eng.ApplyMove(s, tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if next.MatchID != "" {
				t.Errorf("rejected move returned a snapshot")
			}
			if !reflect.DeepEqual(s, before) {
				t.Errorf("rejected move changed the stored snapshot")
			}
		})
	}
}

func TestApplyMoveRejectsSelfCheck(t *testing.T) {
	eng := newEngine(t, Classic())
	s := custom(t, eng, light,
		place(light, King, 4, 4, 0),
		place(shadow, King, 4, 0, 7),
		place(light, Rook, 0, 4, 1),
		place(shadow, Rook, 7, 4, 7),
	)

	moves, err := eng.LegalMoves(s, "light.rook.0")
	if err != nil {
		t.Fatalf("legal moves: %v", err)
	}
	if len(moves) == 0 {
		t.Fatalf("pinned rook has no moves along the pin")
	}
	for _, mv := range moves {
		if mv.To.X != 4 {
			t.Errorf("pinned rook may leave the file: %+v", mv)
		}
	}

	_, err = eng.ApplyMove(s, MoveCommand{PieceID: "light.rook.0", To: Position{X: 5, Y: 1}})
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("err = %v, want ErrIllegalMove", err)
	}

	next := mustMove(t, eng, s, "light.rook.0", 4, 7)
	if len(next.Pieces) != 3 {
		t.Errorf("capture along the pin left %d pieces", len(next.Pieces))
	}
	if rec := next.History[0]; rec.CapturedPieceID != "shadow.rook.7" || rec.CapturedPieceKind != Rook {
		t.Errorf("capture record = %+v", rec)
	}
}

func TestApplyMovePromotion(t *testing.T) {
	eng := newEngine(t, Classic())
	base := func() Snapshot {
		return custom(t, eng, light,
			place(light, King, 4, 4, 0),
			place(shadow, King, 4, 7, 7),
			place(light, Pawn, 0, 0, 6),
		)
	}

	tests := []struct {
		name    string
		request PieceKind
		want    PieceKind
		label   string
		wantErr error
	}{
		{"default", "", Queen, "Queen", nil},
		{"knight", Knight, Knight, "Knight", nil},
		{"king not allowed", King, "", "", ErrInvalidPromotion},
		{"pawn not allowed", Pawn, "", "", ErrInvalidPromotion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := eng.ApplyMove(base(), MoveCommand{PieceID: "light.pawn.0", To: Position{X: 0, Y: 7}, PromoteTo: tt.request})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			pc, ok := FindPieceByID(next.Pieces, "light.pawn.0")
			if !ok {
				t.Fatalf("promoted piece lost its id")
			}
			if pc.Kind != tt.want || pc.Label != tt.label || pc.OwnerID != light {
				t.Errorf("promoted piece = %+v", pc)
			}
			if next.History[0].Promotion != tt.want {
				t.Errorf("record promotion = %q", next.History[0].Promotion)
			}
		})
	}
}

func TestFoolsMate(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)

	s = mustMove(t, eng, s, "light.pawn.5", 5, 2)
	s = mustMove(t, eng, s, "shadow.pawn.4", 4, 4)
	s = mustMove(t, eng, s, "light.pawn.6", 6, 3)
	s = mustMove(t, eng, s, "shadow.queen.3", 7, 3)

	if s.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", s.Status)
	}
	if s.Resolution == nil || s.Resolution.Reason != ReasonCheckmate {
		t.Fatalf("resolution = %+v, want checkmate", s.Resolution)
	}
	if s.WinnerID != shadow || s.Resolution.WinnerID != shadow {
		t.Errorf("winner = %q, want %q", s.WinnerID, shadow)
	}
	last := s.History[len(s.History)-1]
	if !last.Checkmate || !last.Check || last.WinnerID != shadow {
		t.Errorf("last record = %+v", last)
	}
	if s.Turn != 5 || len(s.History) != 4 {
		t.Errorf("turn = %d history = %d", s.Turn, len(s.History))
	}
	inCheck, err := eng.IsKingInCheck(s, light)
	if err != nil || !inCheck {
		t.Errorf("light in check = %v, err %v", inCheck, err)
	}

	_, err = eng.ApplyMove(s, MoveCommand{PieceID: "light.pawn.0", To: Position{X: 0, Y: 2}})
	if !errors.Is(err, ErrMatchCompleted) {
		t.Errorf("move after mate err = %v, want ErrMatchCompleted", err)
	}
}

func TestCheckStatus(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)
	s = mustMove(t, eng, s, "light.pawn.4", 4, 3)
	s = mustMove(t, eng, s, "shadow.pawn.5", 5, 5)
	s = mustMove(t, eng, s, "light.queen.3", 7, 4)

	if s.Status != StatusCheck || s.CheckedPlayerID != shadow {
		t.Fatalf("status = %q checked = %q", s.Status, s.CheckedPlayerID)
	}
	if !s.History[2].Check {
		t.Errorf("check flag missing on record")
	}

	s = mustMove(t, eng, s, "shadow.pawn.6", 6, 5)
	if s.Status != StatusInProgress || s.CheckedPlayerID != "" {
		t.Errorf("after block status = %q checked = %q", s.Status, s.CheckedPlayerID)
	}
}

func TestStalemate(t *testing.T) {
	eng := newEngine(t, Classic())
	s := custom(t, eng, light,
		place(light, King, 4, 0, 0),
		place(light, Queen, 3, 5, 6),
		place(shadow, King, 4, 7, 7),
	)

	s = mustMove(t, eng, s, "light.queen.3", 6, 5)

	if s.Status != StatusCompleted || s.Resolution == nil || s.Resolution.Reason != ReasonStalemate {
		t.Fatalf("status = %q resolution = %+v", s.Status, s.Resolution)
	}
	if s.WinnerID != "" || s.Resolution.WinnerID != "" {
		t.Errorf("stalemate has a winner: %q", s.WinnerID)
	}
	if rec := s.History[0]; !rec.Stalemate || rec.Checkmate || rec.Check {
		t.Errorf("record = %+v", rec)
	}
}

func TestMissingKingIsReported(t *testing.T) {
	eng := newEngine(t, Classic())
	s := custom(t, eng, light,
		place(light, Rook, 0, 0, 0),
		place(shadow, King, 4, 4, 7),
	)
	if _, err := eng.IsKingInCheck(s, light); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := eng.ApplyMove(s, MoveCommand{PieceID: "light.rook.0", To: Position{X: 0, Y: 3}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("apply err = %v, want ErrNotFound", err)
	}
}

func TestConclude(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)

	done, err := eng.Conclude(s, light, ReasonSurrender)
	if err != nil {
		t.Fatalf("conclude: %v", err)
	}
	if done.Status != StatusCompleted || done.WinnerID != shadow || done.Resolution.Reason != ReasonSurrender {
		t.Errorf("concluded = %+v", done)
	}
	if done.Turn != s.Turn || len(done.History) != 0 {
		t.Errorf("conclude changed turn or history")
	}

	tests := []struct {
		name   string
		snap   Snapshot
		loser  string
		reason Reason
		want   error
	}{
		{"already completed", done, shadow, ReasonTimeout, ErrMatchCompleted},
		{"unknown player", s, "stranger", ReasonTimeout, ErrNotFound},
		{"checkmate is not concluded", s, light, ReasonCheckmate, ErrInvalidResolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.Conclude(tt.snap, tt.loser, tt.reason); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRitualCaptureVictory(t *testing.T) {
	eng := newEngine(t, Ritual())
	s := custom(t, eng, light,
		place(light, Dancer, 2, 2, 1),
		place(light, Sentinel, 0, 0, 0),
		place(shadow, Dancer, 2, 2, 4),
		place(shadow, Sentinel, 0, 0, 4),
	)

	s = mustMove(t, eng, s, "light.dancer.2", 2, 4)

	if s.Status != StatusCompleted || s.Resolution == nil || s.Resolution.Reason != ReasonRitual {
		t.Fatalf("status = %q resolution = %+v", s.Status, s.Resolution)
	}
	if s.WinnerID != light {
		t.Errorf("winner = %q, want %q", s.WinnerID, light)
	}
	if s.History[0].CapturedPieceKind != Dancer {
		t.Errorf("record = %+v", s.History[0])
	}
}

func TestRitualHasNoCheck(t *testing.T) {
	eng := newEngine(t, Ritual())
	s := initial(t, eng)
	s = mustMove(t, eng, s, "light.dancer.2", 2, 3)

	if s.Status != StatusInProgress || s.CheckedPlayerID != "" {
		t.Errorf("status = %q checked = %q", s.Status, s.CheckedPlayerID)
	}
	inCheck, err := eng.IsKingInCheck(s, shadow)
	if err != nil || inCheck {
		t.Errorf("ritual check = %v err %v", inCheck, err)
	}
}

func TestProfileMismatch(t *testing.T) {
	classic := newEngine(t, Classic())
	ritual := newEngine(t, Ritual())
	s := initial(t, ritual)

	if _, err := classic.ApplyMove(s, MoveCommand{PieceID: "light.dancer.2", To: Position{X: 2, Y: 1}}); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("err = %v, want ErrInvalidProfile", err)
	}
}
