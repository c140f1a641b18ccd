package routes

import (
	"net/http"

	"tasktracker/metrics"

	"github.com/gin-gonic/gin"
)

// RegisterSystemRoutes serves the liveness banner and Prometheus metrics.
func RegisterSystemRoutes(router *gin.Engine, m *metrics.Metrics) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Task Tracker API is running")
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))
}
