package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/pkg/jwtutil"
	"studybuddy/internal/transport/http/response"
)

const ContextSubjectKey = "subject"

// AuthJWT lets through requests bearing a valid token with the admin role.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, "invalid authorization scheme")
			return
		}

		claims, err := jwtutil.ParseToken(secret, strings.TrimSpace(strings.TrimPrefix(authHeader, prefix)))
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if claims.Role != jwtutil.RoleAdmin {
			response.Error(c, http.StatusForbidden, "admin role required")
			return
		}

		c.Set(ContextSubjectKey, claims.Subject)
		c.Next()
	}
}
