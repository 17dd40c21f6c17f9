// Package middleware carries the gin middleware chain: request logging with
// trace ids and bearer-token authentication.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"techstore/internal/sessions"
	"techstore/internal/users"
	"techstore/pkg/logkey"
)

type userKey int

const currentUserKey userKey = 1

type Mid struct {
	s *sessions.Conf
}

func NewMid(s *sessions.Conf) (*Mid, error) {
	if s == nil {
		return nil, fmt.Errorf("sessions conf is nil")
	}
	return &Mid{s: s}, nil
}

// Authentication resolves the Authorization bearer token to a user and puts
// the user on the request context. Missing, unknown and expired tokens all
// answer 401; the body distinguishes expired so clients can re-login.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		u, err := m.s.ResolveSession(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired session"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), currentUserKey, u)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return token, token != ""
}

// UserFromContext returns the user set by Authentication.
func UserFromContext(ctx context.Context) (users.User, bool) {
	u, ok := ctx.Value(currentUserKey).(users.User)
	return u, ok
}

// logAttrs keeps the Logger attribute order stable.
func logAttrs(traceID string, c *gin.Context, status int, latency string) []any {
	return []any{
		slog.String(logkey.TraceID, traceID),
		slog.String(logkey.Method, c.Request.Method),
		slog.String(logkey.URL, c.Request.URL.Path),
		slog.Int(logkey.Status, status),
		slog.String(logkey.Latency, latency),
	}
}
