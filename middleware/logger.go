package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"techstore/pkg/ctxmanage"
)

// Logger assigns every request a trace id and logs method, path, status and
// latency once the handler chain finishes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.NewString()
		ctx := ctxmanage.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		slog.Info("request completed", logAttrs(traceID, c, c.Writer.Status(), latency.String())...)
	}
}
