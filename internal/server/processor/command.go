package processor

import (
	"khalistra/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateMatch CommandType = iota
	CmdGetMatch
	CmdLegalMoves
	CmdMakeMove
	CmdUndoMove
	CmdResign
	CmdDeleteMatch
	CmdGetBoard
)

// Command is a unified structure for all processor operations
type Command struct {
	Type    CommandType
	MatchID string
	Args    any // Command-specific arguments
}

// LegalMovesArgs selects a piece. A non-empty PlayerID restricts the answer
// to moves that player may make right now.
type LegalMovesArgs struct {
	PieceID  string
	PlayerID string
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateMatchCommand(req core.CreateMatchRequest) Command {
	return Command{
		Type: CmdCreateMatch,
		Args: req,
	}
}

func NewGetMatchCommand(matchID string) Command {
	return Command{
		Type:    CmdGetMatch,
		MatchID: matchID,
	}
}

func NewLegalMovesCommand(matchID, pieceID, playerID string) Command {
	return Command{
		Type:    CmdLegalMoves,
		MatchID: matchID,
		Args:    LegalMovesArgs{PieceID: pieceID, PlayerID: playerID},
	}
}

func NewMakeMoveCommand(matchID string, req core.MoveRequest) Command {
	return Command{
		Type:    CmdMakeMove,
		MatchID: matchID,
		Args:    req,
	}
}

func NewUndoMoveCommand(matchID string, req core.UndoRequest) Command {
	return Command{
		Type:    CmdUndoMove,
		MatchID: matchID,
		Args:    req,
	}
}

func NewResignCommand(matchID string, req core.ResignRequest) Command {
	return Command{
		Type:    CmdResign,
		MatchID: matchID,
		Args:    req,
	}
}

func NewDeleteMatchCommand(matchID string) Command {
	return Command{
		Type:    CmdDeleteMatch,
		MatchID: matchID,
	}
}

func NewGetBoardCommand(matchID string) Command {
	return Command{
		Type:    CmdGetBoard,
		MatchID: matchID,
	}
}
