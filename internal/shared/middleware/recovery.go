package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"monetization-backend/internal/infrastructure/metrics"
	"monetization-backend/internal/shared/response"
)

// Recovery turns a handler panic into a SYS_001 envelope unless the handler
// already started writing.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			metrics.HandlerPanics.WithLabelValues(route).Inc()

			log.Error().
				Str("request_id", c.GetString("request_id")).
				Str("actor", ActorFrom(c).UserID).
				Str("method", c.Request.Method).
				Str("route", route).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.ErrorResponse(c, http.StatusInternalServerError, "SYS_001", "Internal server error")
			c.Abort()
		}()

		c.Next()
	}
}
