package core

// Error codes
const (
	ErrMatchNotFound     = "MATCH_NOT_FOUND"
	ErrMatchExists       = "MATCH_EXISTS"
	ErrPieceNotFound     = "PIECE_NOT_FOUND"
	ErrTurnViolation     = "TURN_VIOLATION"
	ErrOutOfBounds       = "OUT_OF_BOUNDS"
	ErrNoOpMove          = "NO_OP_MOVE"
	ErrIllegalMove       = "ILLEGAL_MOVE"
	ErrInvalidPromotion  = "INVALID_PROMOTION"
	ErrGameOver          = "GAME_OVER"
	ErrInvalidPlayers    = "INVALID_PLAYERS"
	ErrInvalidProfile    = "INVALID_PROFILE"
	ErrStaleState        = "STALE_STATE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInternalError     = "INTERNAL_ERROR"
	ErrResourceLimit     = "RESOURCE_LIMIT"
)
