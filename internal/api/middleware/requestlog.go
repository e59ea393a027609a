package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDHeader = "X-Request-ID"
	userIDHeader    = "X-User-ID"
)

// RequestLog returns Echo middleware that logs each request with structured
// fields. A request ID is generated when the client sends none and is echoed
// back through the response header and echo context. The acting seller from
// X-User-ID is logged when present so per-user flows can be traced.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			}
			if userID := c.Request().Header.Get(userIDHeader); userID != "" {
				attrs = append(attrs, "user_id", userID)
			}
			log.Info("request", attrs...)

			return err
		}
	}
}
