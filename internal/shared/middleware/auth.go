package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/response"
	"monetization-backend/pkg/jwt"
	"monetization-backend/pkg/logger"
)

const actorKey = "actor"

// AuthMiddleware - Middleware xác thực JWT token và gắn Actor vào context
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		// 3. Verify và parse JWT
		claims, err := manager.ValidateAccessToken(parts[1])
		if err != nil {
			logger.Debug("token rejected: " + err.Error())
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		role := claims.Role
		if role == "" {
			role = shared.RoleUser
		}
		actor := shared.Actor{UserID: claims.UserID, Email: claims.Email, Role: role}

		// 4. Set actor vào gin context và request context
		c.Set(actorKey, actor)
		c.Set("userID", actor.UserID)
		c.Set("role", actor.Role)
		c.Request = c.Request.WithContext(shared.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// ActorFrom returns the actor set by AuthMiddleware (zero Actor if missing)
func ActorFrom(c *gin.Context) shared.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(shared.Actor); ok {
			return actor
		}
	}
	return shared.Actor{}
}
