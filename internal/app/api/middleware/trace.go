package middleware

import (
	"context"

	"github.com/cerebra-app/checkout/pkg/logctx"
	"github.com/cerebra-app/checkout/pkg/tool"

	"github.com/gin-gonic/gin"
)

// TraceMiddleware adds a trace ID to the request context.
// It reads X-Request-ID if provided by the client; otherwise generates a
// UUIDv7 so trace ids sort by time. The id is stored in both gin.Context and
// the request's context.Context under logctx.TraceIDKey.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Request-ID")
		if traceID == "" {
			traceID = tool.GenerateUUIDV7()
		}

		c.Set(logctx.TraceIDKey, traceID)
		ctx := context.WithValue(c.Request.Context(), logctx.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
