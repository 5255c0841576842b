package handler

import (
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type RealtimeHandler struct {
	hub    *realtime.Hub
	logger logger.ILogger
}

func NewRealtimeHandler(hub *realtime.Hub, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the connection and subscribes it to pipeline events.
// An optional scope_id query param narrows the feed to a single scope,
// without it the client receives events for every scope.
func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	scopeKey := ""
	if raw := c.Query("scope_id"); raw != "" {
		scopeId, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid scope_id"})
		}
		scopeKey = scopeId.String()
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("RealtimeHandler", "Starting WebSocket session", map[string]interface{}{"scope": scopeKey})
			realtime.ServeWs(h.hub, conn, scopeKey)
			h.logger.Info("RealtimeHandler", "WebSocket session ended", map[string]interface{}{"scope": scopeKey})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket endpoint.
func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
