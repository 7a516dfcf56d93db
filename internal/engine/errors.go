package engine

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrTurnViolation     = errors.New("not this player's turn")
	ErrOutOfBounds       = errors.New("destination outside the board")
	ErrNoOpMove          = errors.New("destination equals origin")
	ErrIllegalMove       = errors.New("illegal move")
	ErrInvalidPromotion  = errors.New("invalid promotion")
	ErrMatchCompleted    = errors.New("match already completed")
	ErrInvalidPlayers    = errors.New("exactly two distinct players required")
	ErrInvalidResolution = errors.New("invalid resolution reason")
	ErrInvalidProfile    = errors.New("invalid rule profile")
)
