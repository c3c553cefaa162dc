package handlers

import (
	"github.com/goswift/goswift-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades an authenticated request to a notification
// push connection.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.MustGet("userId").(uint)
		role := c.GetString("role")

		services.HandleWebSocket(hub, c.Writer, c.Request, userId, role)
	}
}
