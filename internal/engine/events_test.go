package engine

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestProjectUpdateIsStable(t *testing.T) {
	eng := newEngine(t, Classic())
	s := mustMove(t, eng, initial(t, eng), "light.pawn.4", 4, 3)
	at := time.UnixMilli(1700000000000)

	first, err := json.Marshal(ProjectUpdate(s, at))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, _ := json.Marshal(ProjectUpdate(s, at))
	if !bytes.Equal(first, second) {
		t.Errorf("projection not stable:\n%s\n%s", first, second)
	}

	later, _ := json.Marshal(ProjectUpdate(s, at.Add(time.Second)))
	if bytes.Equal(first, later) {
		t.Errorf("timestamp not reflected in payload")
	}

	body := string(first)
	for _, field := range []string{"hasMoved", "history", "label"} {
		if strings.Contains(body, field) {
			t.Errorf("update leaks %q: %s", field, body)
		}
	}
	for _, field := range []string{`"name":"game:update"`, `"matchId":"match-test"`, `"activePlayer":"shadow"`, `"timestamp":1700000000000`} {
		if !strings.Contains(body, field) {
			t.Errorf("update missing %s: %s", field, body)
		}
	}
}

func TestProjectUpdateCopiesPieces(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)
	ev := ProjectUpdate(s, time.Now())
	if len(ev.Payload.State.Pieces) != len(s.Pieces) {
		t.Fatalf("pieces = %d, want %d", len(ev.Payload.State.Pieces), len(s.Pieces))
	}
	ev.Payload.State.Pieces[0].Position = Position{X: 7, Y: 7}
	if s.Pieces[0].Position.Equal(Position{X: 7, Y: 7}) {
		t.Errorf("projection aliases snapshot pieces")
	}
}

func TestProjectFinish(t *testing.T) {
	eng := newEngine(t, Classic())
	s := initial(t, eng)

	if _, ok := ProjectFinish(s, time.Now()); ok {
		t.Errorf("running match produced a finish event")
	}

	done, err := eng.Conclude(s, shadow, ReasonTimeout)
	if err != nil {
		t.Fatalf("conclude: %v", err)
	}
	ev, ok := ProjectFinish(done, time.UnixMilli(42))
	if !ok {
		t.Fatalf("completed match produced no finish event")
	}
	if ev.Name != EventFinish || ev.Payload.WinnerID != light || ev.Payload.Reason != ReasonTimeout || ev.Timestamp != 42 {
		t.Errorf("finish event = %+v", ev)
	}
}

func TestProjectFinishStalemateHasNoWinner(t *testing.T) {
	eng := newEngine(t, Classic())
	s := custom(t, eng, light,
		place(light, King, 4, 0, 0),
		place(light, Queen, 3, 5, 6),
		place(shadow, King, 4, 7, 7),
	)
	s = mustMove(t, eng, s, "light.queen.3", 6, 5)

	ev, ok := ProjectFinish(s, time.Now())
	if !ok {
		t.Fatalf("stalemate produced no finish event")
	}
	body, _ := json.Marshal(ev)
	if strings.Contains(string(body), "winnerId") {
		t.Errorf("stalemate finish names a winner: %s", body)
	}
}
