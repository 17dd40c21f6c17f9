// Package ctxmanage carries per-request values, currently the trace id.
package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type key int

const traceIDKey key = 1

// WithTraceID returns a context carrying the given trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceIDOfRequest returns the trace id set by the logging middleware.
// A fresh id is generated if the middleware did not run.
func GetTraceIDOfRequest(c *gin.Context) string {
	traceID, ok := c.Request.Context().Value(traceIDKey).(string)
	if !ok {
		return uuid.NewString()
	}
	return traceID
}
