package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumeKit/internal/auth"
)

const userIDKey = "userID"

// TokenValidator 校验访问令牌，*auth.Verifier 实现了它。
type TokenValidator interface {
	ValidateToken(token string) (*auth.TokenClaims, error)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验 Bearer 访问令牌并将 userID 注入上下文。
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			LoggerFromContext(c).Debug("access token rejected", "error", err)
			abortUnauthorized(c)
			return
		}

		c.Set(userIDKey, claims.UserID())
		c.Next()
	}
}

// GetUserID 返回 AuthMiddleware 注入的用户 ID。
func GetUserID(c *gin.Context) (string, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := value.(string)
	return id, ok && id != ""
}
