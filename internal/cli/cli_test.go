package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"khalistra/internal/server/processor"
	"khalistra/internal/server/service"
)

func newTestRegistry(t *testing.T) (*Registry, *Session, *bytes.Buffer) {
	t.Helper()
	svc := service.New(nil)
	proc, err := processor.New(svc, 1)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		proc.Close()
		svc.Shutdown(time.Second)
	})

	var out bytes.Buffer
	view := NewView(&out)
	session := NewSession(NewLocal(proc), view, [2]string{"light", "shadow"})
	return NewRegistry(session, view), session, &out
}

func TestCommandsNeedMatch(t *testing.T) {
	r, _, out := newTestRegistry(t)

	for _, line := range []string{"move e2 e4", "undo", "board", "history", "resign", "moves e2"} {
		out.Reset()
		r.Execute(line)
		if !strings.Contains(out.String(), errNoMatch.Error()) {
			t.Errorf("%q printed %q", line, out.String())
		}
	}
}

func TestFoolsMateSession(t *testing.T) {
	r, s, out := newTestRegistry(t)

	r.Execute("new")
	if s.MatchID() == "" {
		t.Fatalf("no match after new: %s", out)
	}
	if !strings.Contains(s.Prompt(), "classic light") {
		t.Errorf("prompt = %q", s.Prompt())
	}

	for _, line := range []string{"move f2 f3", "m e7 e5", "move g2 g4", "move d8 h4"} {
		out.Reset()
		r.Execute(line)
		if strings.Contains(out.String(), "Error") {
			t.Fatalf("%q failed: %s", line, out)
		}
	}
	if !strings.Contains(out.String(), "shadow wins by checkmate") {
		t.Errorf("final output %q", out)
	}
	if !strings.Contains(s.Prompt(), "over") {
		t.Errorf("prompt after mate = %q", s.Prompt())
	}

	out.Reset()
	r.Execute("history")
	if lines := strings.Count(out.String(), "\n"); lines != 4 {
		t.Errorf("history has %d lines: %s", lines, out)
	}
	if !strings.Contains(out.String(), "shadow.queen.3 d8-h4 #") {
		t.Errorf("history %q", out)
	}

	out.Reset()
	r.Execute("move a2 a3")
	if !strings.Contains(out.String(), "GAME_OVER") {
		t.Errorf("move after mate printed %q", out)
	}

	out.Reset()
	r.Execute("undo 2")
	if !strings.Contains(out.String(), "GAME_OVER") {
		t.Errorf("undo after mate printed %q", out)
	}
	current, _ := s.Current()
	if current.Turn != 5 || !current.IsTerminal() {
		t.Errorf("after undo turn=%d terminal=%v", current.Turn, current.IsTerminal())
	}
}

func TestMovesAndErrors(t *testing.T) {
	r, s, out := newTestRegistry(t)
	r.Execute("new classic")

	out.Reset()
	r.Execute("moves g1")
	if !strings.Contains(out.String(), "f3") || !strings.Contains(out.String(), "h3") {
		t.Errorf("knight moves %q", out)
	}

	out.Reset()
	r.Execute("move e4 e5")
	if !strings.Contains(out.String(), "no piece on e4") {
		t.Errorf("empty square %q", out)
	}

	out.Reset()
	r.Execute("move e7 e5")
	if !strings.Contains(out.String(), "TURN_VIOLATION") {
		t.Errorf("wrong side %q", out)
	}

	out.Reset()
	r.Execute("move a1 a9")
	if !strings.Contains(out.String(), "OUT_OF_BOUNDS") {
		t.Errorf("off board %q", out)
	}

	out.Reset()
	r.Execute("color pink")
	if !strings.Contains(out.String(), "invalid theme") {
		t.Errorf("bad theme %q", out)
	}

	out.Reset()
	r.Execute("fly")
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("unknown command %q", out)
	}

	out.Reset()
	r.Execute("resign")
	current, _ := s.Current()
	if current.WinnerID != "shadow" || !strings.Contains(out.String(), "surrender") {
		t.Errorf("resign winner=%q output=%q", current.WinnerID, out)
	}

	out.Reset()
	r.Execute("wait")
	if !strings.Contains(out.String(), "server backend") {
		t.Errorf("local wait %q", out)
	}
}

func TestRitualSession(t *testing.T) {
	r, s, out := newTestRegistry(t)
	r.Execute("new ritual ada bo")

	current, ok := s.Current()
	if !ok || current.BoardSize != 5 || current.ActivePlayer != "ada" {
		t.Fatalf("ritual session %+v: %s", current, out)
	}
	if !strings.Contains(out.String(), "S O D O S") {
		t.Errorf("board %q", out)
	}

	out.Reset()
	r.Execute("new ritual ada")
	if !strings.Contains(out.String(), "both player names") {
		t.Errorf("one name %q", out)
	}
}

func TestHelp(t *testing.T) {
	r, _, out := newTestRegistry(t)

	r.Execute("?")
	for _, name := range []string{"new", "move", "moves", "undo", "resign", "wait", "load"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("help lacks %q", name)
		}
	}

	out.Reset()
	r.Execute("help undo")
	if !strings.Contains(out.String(), "undo [count]") {
		t.Errorf("help undo %q", out)
	}
}
