package cli

import (
	"fmt"

	"khalistra/internal/server/core"
	"khalistra/internal/server/processor"
)

// Backend is where the REPL sends its commands: the in-process processor or
// a remote server through the API client
type Backend interface {
	CreateMatch(req core.CreateMatchRequest) (core.MatchResponse, error)
	GetMatch(matchID string) (core.MatchResponse, error)
	LegalMoves(matchID, pieceID, playerID string) (core.LegalMovesResponse, error)
	MakeMove(matchID string, req core.MoveRequest) (core.MatchResponse, error)
	UndoMoves(matchID string, count int) (core.MatchResponse, error)
	Resign(matchID string, req core.ResignRequest) (core.MatchResponse, error)
	DeleteMatch(matchID string) error
}

// Waiter is implemented by backends that can block until a match changes
type Waiter interface {
	WaitMatch(matchID string, version int) (core.MatchResponse, error)
}

// Local runs commands on an in-process processor
type Local struct {
	proc *processor.Processor
}

func NewLocal(proc *processor.Processor) *Local {
	return &Local{proc: proc}
}

// CommandError is a failed processor response
type CommandError struct {
	Code    string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func execute[T any](l *Local, cmd processor.Command) (T, error) {
	var zero T
	resp := l.proc.Execute(cmd)
	if !resp.Success {
		return zero, &CommandError{Code: resp.Error.Code, Message: resp.Error.Error}
	}
	data, ok := resp.Data.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected response type %T", resp.Data)
	}
	return data, nil
}

func (l *Local) CreateMatch(req core.CreateMatchRequest) (core.MatchResponse, error) {
	return execute[core.MatchResponse](l, processor.NewCreateMatchCommand(req))
}

func (l *Local) GetMatch(matchID string) (core.MatchResponse, error) {
	return execute[core.MatchResponse](l, processor.NewGetMatchCommand(matchID))
}

func (l *Local) LegalMoves(matchID, pieceID, playerID string) (core.LegalMovesResponse, error) {
	return execute[core.LegalMovesResponse](l, processor.NewLegalMovesCommand(matchID, pieceID, playerID))
}

func (l *Local) MakeMove(matchID string, req core.MoveRequest) (core.MatchResponse, error) {
	return execute[core.MatchResponse](l, processor.NewMakeMoveCommand(matchID, req))
}

func (l *Local) UndoMoves(matchID string, count int) (core.MatchResponse, error) {
	return execute[core.MatchResponse](l, processor.NewUndoMoveCommand(matchID, core.UndoRequest{Count: count}))
}

func (l *Local) Resign(matchID string, req core.ResignRequest) (core.MatchResponse, error) {
	return execute[core.MatchResponse](l, processor.NewResignCommand(matchID, req))
}

func (l *Local) DeleteMatch(matchID string) error {
	resp := l.proc.Execute(processor.NewDeleteMatchCommand(matchID))
	if !resp.Success {
		return &CommandError{Code: resp.Error.Code, Message: resp.Error.Error}
	}
	return nil
}
