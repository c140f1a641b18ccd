package routes

import (
	"tasktracker/services"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes sets up the live task event endpoint. Callers
// attach authentication to group when it is enabled.
func RegisterWebSocketRoutes(group *gin.RouterGroup, wsService services.WebSocketServiceInterface) {
	group.GET("/ws", func(c *gin.Context) {
		wsService.HandleConnection(c)
	})
}
