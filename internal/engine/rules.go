package engine

import (
	"fmt"
	"slices"
)

// ApplyMove validates cmd against s and returns the snapshot after the move.
// On error s remains the current state of the match.
func (e *Engine) ApplyMove(s Snapshot, cmd MoveCommand) (Snapshot, error) {
	if err := e.checkProfile(s); err != nil {
		return Snapshot{}, err
	}
	if s.IsTerminal() {
		return Snapshot{}, ErrMatchCompleted
	}

	piece, ok := FindPieceByID(s.Pieces, cmd.PieceID)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: piece %q", ErrNotFound, cmd.PieceID)
	}
	if piece.OwnerID != s.ActivePlayer {
		return Snapshot{}, fmt.Errorf("%w: %q belongs to %q, %q is to move", ErrTurnViolation, piece.ID, piece.OwnerID, s.ActivePlayer)
	}
	if !InBounds(cmd.To, s.BoardSize) {
		return Snapshot{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, cmd.To.X, cmd.To.Y)
	}
	if piece.Position.Equal(cmd.To) {
		return Snapshot{}, ErrNoOpMove
	}

	legal, err := e.legalMovesForPiece(s, piece)
	if err != nil {
		return Snapshot{}, err
	}
	idx := slices.IndexFunc(legal, func(mv LegalMove) bool { return mv.To.Equal(cmd.To) })
	if idx < 0 {
		return Snapshot{}, fmt.Errorf("%w: %s to (%d,%d)", ErrIllegalMove, piece.ID, cmd.To.X, cmd.To.Y)
	}

	promotion, err := e.resolvePromotion(s, piece, cmd, legal[idx])
	if err != nil {
		return Snapshot{}, err
	}

	proj := e.project(s.Pieces, piece, cmd.To, promotion)
	next := s
	next.Pieces = proj.pieces

	opponentID := Opponent(s.Players, s.ActivePlayer)
	opponentInCheck, err := e.royalThreatened(next, opponentID)
	if err != nil {
		return Snapshot{}, err
	}
	resolution, err := e.evaluateResolution(next, s.ActivePlayer, opponentID, opponentInCheck, proj.captured)
	if err != nil {
		return Snapshot{}, err
	}

	record := MoveRecord{
		MoveCommand: cmd,
		From:        piece.Position,
		Turn:        s.Turn,
		Promotion:   proj.promotion,
		Check:       opponentInCheck,
	}
	if proj.captured != nil {
		record.CapturedPieceID = proj.captured.ID
		record.CapturedPieceKind = proj.captured.Kind
	}

	next.Turn = s.Turn + 1
	next.ActivePlayer = opponentID
	next.Resolution = resolution
	next.WinnerID = ""
	next.CheckedPlayerID = ""
	switch {
	case resolution != nil:
		next.Status = StatusCompleted
		next.WinnerID = resolution.WinnerID
		record.Checkmate = resolution.Reason == ReasonCheckmate
		record.Stalemate = resolution.Reason == ReasonStalemate
		record.WinnerID = resolution.WinnerID
	case opponentInCheck:
		next.Status = StatusCheck
		next.CheckedPlayerID = opponentID
	default:
		next.Status = StatusInProgress
	}

	history := make([]MoveRecord, len(s.History), len(s.History)+1)
	copy(history, s.History)
	next.History = append(history, record)

	return next, nil
}

// resolvePromotion picks the promotion kind for a move onto the last rank:
// the requested kind, else the generator's suggestion, else the profile
// default. Requesting a promotion on any other move is rejected.
func (e *Engine) resolvePromotion(s Snapshot, piece Piece, cmd MoveCommand, selected LegalMove) (PieceKind, error) {
	if !reachesPromotionRank(e.profile, s, piece, cmd.To) {
		if cmd.PromoteTo != "" {
			return "", fmt.Errorf("%w: %s does not promote on (%d,%d)", ErrInvalidPromotion, piece.ID, cmd.To.X, cmd.To.Y)
		}
		return "", nil
	}

	choice := cmd.PromoteTo
	if choice == "" {
		choice = selected.Promotion
	}
	if choice == "" {
		choice = e.profile.DefaultPromotion
	}
	if !slices.Contains(e.profile.PromotionOptions, choice) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPromotion, choice)
	}
	return choice, nil
}

// evaluateResolution classifies the position the defender faces after a move
func (e *Engine) evaluateResolution(next Snapshot, attackerID, defenderID string, defenderInCheck bool, captured *Piece) (*Resolution, error) {
	if e.profile.Victory == VictoryCapture && captured != nil && slices.Contains(e.profile.CaptureTargets, captured.Kind) {
		return &Resolution{Reason: ReasonRitual, WinnerID: attackerID}, nil
	}

	moves, err := e.countLegalMoves(next, defenderID)
	if err != nil {
		return nil, err
	}
	if moves > 0 {
		return nil, nil
	}
	if defenderInCheck {
		return &Resolution{Reason: ReasonCheckmate, WinnerID: attackerID}, nil
	}
	return &Resolution{Reason: ReasonStalemate}, nil
}

// Conclude ends a running match because loserID surrendered or ran out of
// time. The opponent is declared the winner; turn and history are unchanged.
func (e *Engine) Conclude(s Snapshot, loserID string, reason Reason) (Snapshot, error) {
	if err := e.checkProfile(s); err != nil {
		return Snapshot{}, err
	}
	if s.IsTerminal() {
		return Snapshot{}, ErrMatchCompleted
	}
	if reason != ReasonSurrender && reason != ReasonTimeout {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidResolution, reason)
	}
	if !isPlayer(s.Players, loserID) {
		return Snapshot{}, fmt.Errorf("%w: player %q", ErrNotFound, loserID)
	}

	winnerID := Opponent(s.Players, loserID)
	next := s
	next.Status = StatusCompleted
	next.WinnerID = winnerID
	next.CheckedPlayerID = ""
	next.Resolution = &Resolution{Reason: reason, WinnerID: winnerID}
	return next, nil
}
