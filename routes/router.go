package routes

import (
	"tasktracker/config"
	"tasktracker/database"
	"tasktracker/metrics"
	"tasktracker/middleware"
	"tasktracker/services"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP surface. When cfg enables auth every /api
// route requires a bearer token.
func SetupRouter(cfg config.Config, db *database.Database, taskService services.TaskServiceInterface, wsService services.WebSocketServiceInterface, m *metrics.Metrics) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.MetricsMiddleware(m))

	RegisterSystemRoutes(router, m)

	api := router.Group("/api")
	if cfg.AuthEnabled() {
		api.Use(middleware.AuthMiddleware([]byte(cfg.JWTSecret)))
	}

	RegisterTaskRoutes(api, db, taskService)
	if wsService != nil {
		RegisterWebSocketRoutes(api, wsService)
	}
	if cfg.AppEnv != "production" {
		RegisterDebugRoutes(api, db)
	}

	return router
}
