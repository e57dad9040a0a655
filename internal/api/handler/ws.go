package handler

import (
	"log"

	"estatehub/backend/internal/chathub"
	"estatehub/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket. AuthRequired has already
// resolved the user, so the hub never trusts ids sent over the socket.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		log.Printf("WARNING: WebSocket upgrade failed for %s: %v", user.ID, err)
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, user.Public())

	// Реєстрація клієнта в Chat Hub
	select {
	case h.Hub.RegisterCh <- client:
	case <-h.Hub.Done():
		conn.Close()
		return
	}
	client.Run()
}
