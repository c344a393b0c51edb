package docsite

import (
	"strings"
	"time"

	"github.com/agntcy/docs-visits/internal/logging"
	"github.com/gin-gonic/gin"
)

// loggingMiddleware routes gin's access log through the structured logger.
// Tracker endpoints log at debug level; the bridge script calls them on
// every page view.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		logf := logging.Info
		if strings.HasPrefix(param.Path, trackerPrefix) {
			logf = logging.Debug
		}
		logf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
		return ""
	})
}

// corsMiddleware lets pages served from another origin (a docs preview
// server, for instance) load the bridge script and call the tracker surface.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Content-Type")
		c.Header("Access-Control-Max-Age", "300")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
