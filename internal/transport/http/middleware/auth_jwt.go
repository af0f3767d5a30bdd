package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-microblog/internal/core/auth"
	resp "go-gin-gorm-microblog/internal/transport/http/response"
)

// Context keys set by AuthJWT.
const (
	KeyUserID = "userId"
	KeyRoles  = "roles"
)

// AuthJWT requires a valid bearer token and exposes its uid and roles.
// Role gates belong to the action being served.
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRoles, claims.Roles)
		c.Next()
	}
}
