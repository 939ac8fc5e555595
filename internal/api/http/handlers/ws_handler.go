package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/ws"
)

// WSHandler upgrades connections and hands them to the hub. Reads are
// drained and discarded; the stream is push only.
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler constructs handler.
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Upgrade gates the route to proper websocket upgrade requests.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve registers the connection until the client goes away.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.hub.Register(conn)
		defer func() {
			h.hub.Unregister(conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
