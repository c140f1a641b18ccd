package routes

import (
	"net/http"
	"time"

	"tasktracker/database"
	"tasktracker/models"

	"github.com/gin-gonic/gin"
)

// RegisterDebugRoutes exposes store health and the outbox backlog.
func RegisterDebugRoutes(group *gin.RouterGroup, db *database.Database) {
	debugGroup := group.Group("/debug")
	{
		debugGroup.GET("/health", func(c *gin.Context) {
			if err := db.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unavailable",
					"error":  err.Error(),
					"time":   time.Now(),
				})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now()})
		})

		debugGroup.GET("/event-queue", func(c *gin.Context) {
			var events []models.Event
			if err := db.DB.Where("dispatched = ?", false).Order("timestamp ASC").Find(&events).Error; err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task store unavailable"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"pending_events": len(events),
				"events":         events,
				"time":           time.Now(),
			})
		})
	}
}
