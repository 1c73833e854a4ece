// Package middleware provides HTTP middleware functions for request logging and processing.
package middleware

import (
	"time"

	"github.com/airwave-tv/airwave/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger returns a Gin middleware for logging HTTP requests
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")

		if len(c.Errors) > 0 {
			logger.Log.Error().
				Strs("errors", c.Errors.Errors()).
				Str("path", path).
				Msg("Request completed with errors")
		}
	}
}
