package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"medcompanion-server/internal/utils"
)

const subjectKey = "tokenSubject"

// ToolAuthMiddleware requires a bearer JWT signed with secret. An empty
// secret disables the check.
func ToolAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], secret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		c.Set(subjectKey, claims.Subject)
		c.Next()
	}
}

// GetSubjectFromContext returns the token subject set by ToolAuthMiddleware
func GetSubjectFromContext(c *gin.Context) (string, bool) {
	subject, exists := c.Get(subjectKey)
	if !exists {
		return "", false
	}
	s, ok := subject.(string)
	return s, ok
}
