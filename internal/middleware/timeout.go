package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/response"
)

// Timeout bounds the request context. Handlers see the deadline through
// c.Request.Context(); if it passes before anything was written the client gets 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			response.Fail(c, apperr.KindTimeout, "request timed out")
		}
	}
}
