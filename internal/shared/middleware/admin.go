package middleware

import (
	"github.com/gin-gonic/gin"

	"monetization-backend/internal/shared/response"
)

// AdminMiddleware checks if user has admin role.
// Services check the role again; this only short-circuits the admin group.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAdmin() {
			response.Forbidden(c, "Không có quyền truy cập: yêu cầu quyền quản trị")
			c.Abort()
			return
		}

		c.Next()
	}
}
