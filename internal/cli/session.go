package cli

import (
	"errors"
	"fmt"
	"strings"

	"khalistra/internal/engine"
	"khalistra/internal/server/core"
	"khalistra/internal/server/game"
)

var errNoMatch = errors.New("no match in progress, start one with 'new'")

// Session is the REPL's view of the match being played
type Session struct {
	backend Backend
	view    *View
	players [2]string
	matchID string
	current engine.Snapshot
	version int
}

func NewSession(backend Backend, view *View, players [2]string) *Session {
	return &Session{
		backend: backend,
		view:    view,
		players: players,
	}
}

func (s *Session) MatchID() string {
	return s.matchID
}

func (s *Session) Current() (engine.Snapshot, bool) {
	return s.current, s.matchID != ""
}

func (s *Session) adopt(resp core.MatchResponse) {
	s.matchID = resp.MatchID
	s.current = resp.Snapshot
	s.version = resp.Version
}

func (s *Session) requireMatch() error {
	if s.matchID == "" {
		return errNoMatch
	}
	return nil
}

// pieceAt resolves a square to the piece standing on it
func (s *Session) pieceAt(square string) (engine.Piece, error) {
	pos, err := game.ParseSquare(square, s.current.BoardSize)
	if err != nil {
		return engine.Piece{}, err
	}
	pc, ok := engine.FindPieceAt(s.current.Pieces, pos)
	if !ok {
		return engine.Piece{}, fmt.Errorf("no piece on %s", square)
	}
	return pc, nil
}

// Prompt summarizes the session for the readline prompt
func (s *Session) Prompt() string {
	if s.matchID == "" {
		return "khalistra > "
	}
	short := s.matchID
	if len(short) > 8 {
		short = short[:8]
	}
	state := s.current.ActivePlayer
	if s.current.IsTerminal() {
		state = "over"
	}
	return fmt.Sprintf("khalistra [%s %s %s] > ", short, s.current.Profile, strings.ToLower(state))
}
