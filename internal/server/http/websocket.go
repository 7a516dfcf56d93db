package http

import (
	"log"

	"khalistra/internal/server/core"
	"khalistra/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade admits upgrade requests for existing matches only
func WebSocketUpgrade(svc *service.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		matchID, ok := matchIDParam(c)
		if !ok {
			return invalidMatchID(c)
		}
		if _, _, err := svc.GetMatch(matchID); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
				Error: "match not found",
				Code:  core.ErrMatchNotFound,
			})
		}

		// Locals survive the upgrade, the request context does not
		c.Locals("wsMatchID", matchID)
		return c.Next()
	}
}

// Stream relays game:update and game:finish events of one match. Messages
// from the client are read only to detect disconnects.
func (h *HTTPHandler) Stream(c *websocket.Conn) {
	matchID, _ := c.Locals("wsMatchID").(string)

	unsubscribe, err := h.svc.Subscribe(matchID, c)
	if err != nil {
		log.Printf("Stream for match %s refused: %v", matchID, err)
		c.WriteJSON(core.ErrorResponse{
			Error: err.Error(),
			Code:  core.ErrMatchNotFound,
		})
		c.Close()
		return
	}
	// The conn is recycled once Stream returns; unsubscribe waits for the
	// hub writer to finish with it
	defer unsubscribe()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
