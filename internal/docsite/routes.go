package docsite

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const trackerPrefix = "/_tracker"

// Configures all host routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// Operational endpoints
	router.GET("/health", s.getHandlerHealth())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// Tracker surface used by the bridge script and the harness
	tr := router.Group(trackerPrefix)
	{
		tr.GET("/tracker.js", s.getHandlerScript())
		tr.GET("/config", s.getHandlerConfig())
		tr.POST("/events", s.getHandlerEvents())
		tr.POST("/submit", s.getHandlerSubmit())

		tr.GET("/visits", s.getHandlerVisits())
		tr.PUT("/visits", s.getHandlerReplaceVisits())
		tr.DELETE("/visits", s.getHandlerClearVisits())
	}

	// Everything else is a documentation page or asset.
	router.NoRoute(s.getHandlerPages())
}
