package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Digital-Creators-Team/lotto-ledger/types"
)

// Timeout bounds the request context. Handlers run on the request goroutine
// and are expected to honour ctx; if the deadline passed before anything was
// written the client gets 408.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusRequestTimeout, types.NewErrorResponse(
				http.StatusRequestTimeout, c.Request.URL.Path, "Request timeout", http.StatusRequestTimeout))
		}
	}
}
