package server

import (
	"errors"

	"forum/internal/middleware"
	"forum/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebsocketHandler streams the caller's notification events. The socket is
// receive-only; clients fetch history over HTTP.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			msg := "connection refused"
			switch {
			case errors.Is(err, notifications.ErrUserFull):
				msg = "too many connections"
			case errors.Is(err, notifications.ErrServerFull), errors.Is(err, notifications.ErrHubShutdown):
				msg = "server unavailable"
			}
			middleware.Logger.Warn("websocket register failed", "user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+msg+`"}`))
			_ = conn.Close()
			return
		}

		middleware.Logger.Info("websocket connected", "user_id", userID)
		go client.WritePump()
		client.ReadPump()
	})
}
