package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/liveclass-gateway/internal/application"
	"github.com/example/liveclass-gateway/internal/logging"
)

const callerContextKey = "liveclass.caller"

// Trusted headers injected by the upstream gateway after authentication.
const (
	headerUserID    = "X-User-ID"
	headerUserEmail = "X-User-Email"
	headerUserRole  = "X-User-Role"
)

// RequestLogger attaches a request-scoped logger to the context and emits
// one line per completed request.
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(c *gin.Context) {
		id := counter.Add(1)
		logger := base.With(
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), logger))

		start := time.Now()
		c.Next()

		logger.InfoContext(c.Request.Context(), "request completed",
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RequireCaller extracts the caller from the trusted identity headers and
// aborts with 401 when they are missing or carry an unknown role.
func RequireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(headerUserID))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing user identity"})
			return
		}

		role, ok := application.ParseRole(c.GetHeader(headerUserRole))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing or unknown user role"})
			return
		}

		c.Set(callerContextKey, application.Caller{
			ID:    userID,
			Email: strings.TrimSpace(c.GetHeader(headerUserEmail)),
			Role:  role,
		})
		c.Next()
	}
}

func callerFrom(c *gin.Context) (application.Caller, bool) {
	value, ok := c.Get(callerContextKey)
	if !ok {
		return application.Caller{}, false
	}
	caller, ok := value.(application.Caller)
	return caller, ok
}
