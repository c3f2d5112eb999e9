package middleware

import (
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"greencoin.backend/pkg/logger"
)

// quietPaths are polled by probes and scrapers and are not logged.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// LoggerMiddleware logs HTTP requests using the structured logger. Bearer
// tokens passed as a query parameter are redacted.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if quietPaths[path] {
			return
		}
		if query := redactQuery(c.Request.URL.Query()); query != "" {
			path = path + "?" + query
		}

		// Request ID and user ID travel in c.Request.Context()
		logger.LogRequest(c.Request.Context(), c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

func redactQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	if _, ok := values[TokenQueryParam]; ok {
		values.Set(TokenQueryParam, "REDACTED")
	}
	return values.Encode()
}
