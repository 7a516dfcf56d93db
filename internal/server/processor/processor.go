// Package processor executes match commands against the rules engine. Reads
// run directly; every command that changes a match runs on that match's
// queue worker so it always evaluates the latest snapshot.
package processor

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"khalistra/internal/engine"
	"khalistra/internal/server/core"
	"khalistra/internal/server/game"
	"khalistra/internal/server/service"
)

// Processor handles command execution and coordinates between the service
// and the engines
type Processor struct {
	svc     *service.Service
	queue   *MatchQueue
	engines map[string]*engine.Engine
}

// New creates a processor with one engine per built-in profile
func New(svc *service.Service, workers int) (*Processor, error) {
	engines := make(map[string]*engine.Engine)
	for _, name := range []string{engine.ProfileClassic, engine.ProfileRitual} {
		eng, err := engine.ForProfile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s engine: %w", name, err)
		}
		engines[name] = eng
	}

	return &Processor{
		svc:     svc,
		queue:   NewMatchQueue(workers),
		engines: engines,
	}, nil
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateMatch:
		return p.handleCreateMatch(cmd)
	case CmdGetMatch:
		return p.handleGetMatch(cmd)
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdMakeMove:
		return p.serialized(cmd, p.handleMakeMove)
	case CmdUndoMove:
		return p.serialized(cmd, p.handleUndoMove)
	case CmdResign:
		return p.serialized(cmd, p.handleResign)
	case CmdDeleteMatch:
		return p.serialized(cmd, p.handleDeleteMatch)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

func (p *Processor) serialized(cmd Command, handler func(Command) ProcessorResponse) ProcessorResponse {
	resp, err := p.queue.Do(cmd.MatchID, func() ProcessorResponse {
		return handler(cmd)
	})
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrResourceLimit)
	}
	return resp
}

func (p *Processor) engineFor(profile string) (*engine.Engine, error) {
	if profile == "" {
		profile = engine.ProfileClassic
	}
	eng, ok := p.engines[profile]
	if !ok {
		return nil, fmt.Errorf("%w: unknown profile %q", engine.ErrInvalidProfile, profile)
	}
	return eng, nil
}

// handleCreateMatch lays out a new match and registers it
func (p *Processor) handleCreateMatch(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateMatchRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	eng, err := p.engineFor(args.Profile)
	if err != nil {
		return p.failure(err)
	}

	snap, err := eng.CreateInitialState(p.svc.GenerateMatchID(), args.Players)
	if err != nil {
		return p.failure(err)
	}

	commit, err := p.svc.CreateMatch(snap)
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    commitResponse(commit),
	}
}

func (p *Processor) handleGetMatch(cmd Command) ProcessorResponse {
	snap, version, err := p.svc.GetMatch(cmd.MatchID)
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.MatchResponse{
			MatchID:  cmd.MatchID,
			Version:  version,
			Snapshot: snap,
		},
	}
}

func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(LegalMovesArgs)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	snap, _, err := p.svc.GetMatch(cmd.MatchID)
	if err != nil {
		return p.failure(err)
	}
	eng, err := p.engineFor(snap.Profile)
	if err != nil {
		return p.failure(err)
	}

	var moves []engine.LegalMove
	if args.PlayerID != "" {
		moves, err = eng.LegalMovesFor(snap, args.PieceID, args.PlayerID)
	} else {
		moves, err = eng.LegalMoves(snap, args.PieceID)
	}
	if err != nil {
		return p.failure(err)
	}
	if moves == nil {
		moves = []engine.LegalMove{}
	}

	return ProcessorResponse{
		Success: true,
		Data: core.LegalMovesResponse{
			MatchID: cmd.MatchID,
			PieceID: args.PieceID,
			Moves:   moves,
		},
	}
}

// handleMakeMove applies a move and commits the resulting snapshot
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	snap, version, err := p.svc.GetMatch(cmd.MatchID)
	if err != nil {
		return p.failure(err)
	}
	eng, err := p.engineFor(snap.Profile)
	if err != nil {
		return p.failure(err)
	}

	next, err := eng.ApplyMove(snap, engine.MoveCommand{
		PieceID:    args.PieceID,
		To:         args.To,
		PromoteTo:  engine.PieceKind(args.PromoteTo),
		VariantTag: args.VariantTag,
	})
	if err != nil {
		return p.failure(err)
	}

	commit, err := p.svc.CommitSnapshot(version, next)
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    commitResponse(commit),
	}
}

func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}

	commit, err := p.svc.UndoMoves(cmd.MatchID, args.Count)
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    commitResponse(commit),
	}
}

// handleResign ends the match in favour of the resigning player's opponent
func (p *Processor) handleResign(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ResignRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	reason := engine.ReasonSurrender
	if args.Reason != "" {
		reason = engine.Reason(args.Reason)
	}

	snap, version, err := p.svc.GetMatch(cmd.MatchID)
	if err != nil {
		return p.failure(err)
	}
	eng, err := p.engineFor(snap.Profile)
	if err != nil {
		return p.failure(err)
	}

	if !slices.Contains(snap.Players[:], args.PlayerID) {
		return p.errorResponse(fmt.Sprintf("player %q is not in this match", args.PlayerID), core.ErrInvalidPlayers)
	}

	next, err := eng.Conclude(snap, args.PlayerID, reason)
	if err != nil {
		return p.failure(err)
	}

	commit, err := p.svc.CommitSnapshot(version, next)
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    commitResponse(commit),
	}
}

func (p *Processor) handleDeleteMatch(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteMatch(cmd.MatchID); err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	snap, _, err := p.svc.GetMatch(cmd.MatchID)
	if err != nil {
		return p.failure(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			MatchID: cmd.MatchID,
			Board:   game.ToASCII(snap),
		},
	}
}

func commitResponse(commit service.Commit) core.MatchResponse {
	update := commit.Update
	return core.MatchResponse{
		MatchID:  commit.Snapshot.MatchID,
		Version:  commit.Version,
		Snapshot: commit.Snapshot,
		Event:    &update,
		Finish:   commit.Finish,
	}
}

// ErrorCode maps engine and service errors to API error codes
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrMatchNotFound):
		return core.ErrMatchNotFound
	case errors.Is(err, service.ErrMatchExists):
		return core.ErrMatchExists
	case errors.Is(err, service.ErrStaleSnapshot):
		return core.ErrStaleState
	case errors.Is(err, service.ErrTooManyMatches):
		return core.ErrResourceLimit
	case errors.Is(err, engine.ErrNotFound):
		return core.ErrPieceNotFound
	case errors.Is(err, engine.ErrTurnViolation):
		return core.ErrTurnViolation
	case errors.Is(err, engine.ErrOutOfBounds):
		return core.ErrOutOfBounds
	case errors.Is(err, engine.ErrNoOpMove):
		return core.ErrNoOpMove
	case errors.Is(err, engine.ErrIllegalMove):
		return core.ErrIllegalMove
	case errors.Is(err, engine.ErrInvalidPromotion):
		return core.ErrInvalidPromotion
	case errors.Is(err, engine.ErrMatchCompleted):
		return core.ErrGameOver
	case errors.Is(err, engine.ErrInvalidPlayers):
		return core.ErrInvalidPlayers
	case errors.Is(err, engine.ErrInvalidProfile):
		return core.ErrInvalidProfile
	case errors.Is(err, engine.ErrInvalidResolution), errors.Is(err, game.ErrUndoUnavailable):
		return core.ErrInvalidRequest
	default:
		return core.ErrInternalError
	}
}

func (p *Processor) failure(err error) ProcessorResponse {
	return p.errorResponse(err.Error(), ErrorCode(err))
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the match queue
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
