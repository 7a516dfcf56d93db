// Package http exposes the match processor over a fiber REST API and streams
// match events over websockets.
package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"khalistra/internal/server/core"
	"khalistra/internal/server/processor"
	"khalistra/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second, // above service.WaitTimeout for long-polls
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// Event stream
	app.Get("/ws/matches/:matchId", WebSocketUpgrade(svc), websocket.New(h.Stream))

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Post("/matches", h.CreateMatch)
	api.Get("/matches/:matchId", h.GetMatch)
	api.Delete("/matches/:matchId", h.DeleteMatch)
	api.Get("/matches/:matchId/pieces/:pieceId/moves", h.LegalMoves)
	api.Post("/matches/:matchId/moves", h.MakeMove)
	api.Post("/matches/:matchId/undo", h.UndoMove)
	api.Post("/matches/:matchId/resign", h.Resign)
	api.Get("/matches/:matchId/board", h.GetBoard)

	return app
}

// contentTypeValidator ensures POST requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrMatchNotFound
		case fiber.StatusBadRequest, fiber.StatusUpgradeRequired:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps an API error code to an HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrMatchNotFound, core.ErrPieceNotFound:
		return fiber.StatusNotFound
	case core.ErrTurnViolation, core.ErrGameOver, core.ErrStaleState, core.ErrMatchExists:
		return fiber.StatusConflict
	case core.ErrOutOfBounds, core.ErrNoOpMove, core.ErrIllegalMove, core.ErrInvalidPromotion:
		return fiber.StatusUnprocessableEntity
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

func respond(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(okStatus)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

// matchIDParam returns the match id path parameter and whether it is a UUID
func matchIDParam(c *fiber.Ctx) (string, bool) {
	matchID := c.Params("matchId")
	return matchID, isValidUUID(matchID)
}

func invalidMatchID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid match ID format",
		Code:    core.ErrInvalidRequest,
		Details: "match ID must be a valid UUID",
	})
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
		"matches": h.svc.MatchCount(),
	})
}

// CreateMatch lays out a new match for two players
func (h *HTTPHandler) CreateMatch(c *fiber.Ctx) error {
	req, ok := validatedBody[core.CreateMatchRequest](c)
	if !ok {
		return validationBypass(c)
	}

	resp := h.proc.Execute(processor.NewCreateMatchCommand(req))
	return respond(c, resp, fiber.StatusCreated)
}

// GetMatch returns the current snapshot. With wait=true and a version it
// holds the request until the match moves past that version.
func (h *HTTPHandler) GetMatch(c *fiber.Ctx) error {
	matchID, ok := matchIDParam(c)
	if !ok {
		return invalidMatchID(c)
	}

	if c.Query("wait", "false") != "true" {
		return respond(c, h.proc.Execute(processor.NewGetMatchCommand(matchID)), fiber.StatusOK)
	}

	version, err := strconv.Atoi(c.Query("version", "-1"))
	if err != nil {
		version = -1
	}

	ctx := c.Context()
	notify, err := h.svc.RegisterWait(matchID, version, ctx)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "match not found",
			Code:  core.ErrMatchNotFound,
		})
	}

	select {
	case <-notify:
		// Changed, timed out or deleted
		return respond(c, h.proc.Execute(processor.NewGetMatchCommand(matchID)), fiber.StatusOK)
	case <-ctx.Done():
		return nil
	}
}

// LegalMoves lists the destinations of one piece. playerId restricts the
// answer to what that player may play now.
func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	matchID, ok := matchIDParam(c)
	if !ok {
		return invalidMatchID(c)
	}

	cmd := processor.NewLegalMovesCommand(matchID, c.Params("pieceId"), c.Query("playerId"))
	return respond(c, h.proc.Execute(cmd), fiber.StatusOK)
}

// MakeMove submits a move for the active player
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	matchID, ok := matchIDParam(c)
	if !ok {
		return invalidMatchID(c)
	}

	req, valid := validatedBody[core.MoveRequest](c)
	if !valid {
		return validationBypass(c)
	}

	return respond(c, h.proc.Execute(processor.NewMakeMoveCommand(matchID, req)), fiber.StatusOK)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	matchID, ok := matchIDParam(c)
	if !ok {
		return invalidMatchID(c)
	}

	req, valid := validatedBody[core.UndoRequest](c)
	if !valid {
		return validationBypass(c)
	}

	return respond(c, h.proc.Execute(processor.NewUndoMoveCommand(matchID, req)), fiber.StatusOK)
}

// Resign concludes the match against the given player
func (h *HTTPHandler) Resign(c *fiber.Ctx) error {
	matchID, ok := matchIDParam(c)
	if !ok {
		return invalidMatchID(c)
	}

	req, valid := validatedBody[core.ResignRequest](c)
	if !valid {
		return validationBypass(c)
	}

	return respond(c, h.proc.Execute(processor.NewResignCommand(matchID, req)), fiber.StatusOK)
}

// DeleteMatch ends and cleans up a match
func (h *HTTPHandler) DeleteMatch(c *fiber.Ctx) error {
	matchID, ok := matchIDParam(c)
	if !ok {
		return invalidMatchID(c)
	}

	return respond(c, h.proc.Execute(processor.NewDeleteMatchCommand(matchID)), fiber.StatusNoContent)
}

// GetBoard returns an ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	matchID, ok := matchIDParam(c)
	if !ok {
		return invalidMatchID(c)
	}

	return respond(c, h.proc.Execute(processor.NewGetBoardCommand(matchID)), fiber.StatusOK)
}
