package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	resp "go-gin-gorm-microblog/internal/transport/http/response"
)

// Timeout puts a deadline on the request context. Routes listed in
// streaming (by template) are left alone. If the handler wrote nothing
// before the deadline the client gets CodeTimeout.
func Timeout(d time.Duration, streaming ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(streaming, c.FullPath()) {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTimeout, "timeout"))
		}
	}
}
