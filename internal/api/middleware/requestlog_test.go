package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	mw "github.com/jmfallon/beepbeep/internal/api/middleware"
)

func TestRequestLog_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	e.Use(mw.RequestLog(log))
	e.GET("/api/v1/drafts", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drafts", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	reqID := rec.Header().Get("X-Request-ID")
	assert.NotEmpty(t, reqID)
	assert.Contains(t, buf.String(), "request_id="+reqID)
	assert.Contains(t, buf.String(), "path=/api/v1/drafts")
	assert.Contains(t, buf.String(), "status=200")
}

func TestRequestLog_PropagatesProvidedRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	e.Use(mw.RequestLog(log))
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-Request-ID", "trace-me-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "trace-me-123", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), "request_id=trace-me-123")
}

func TestRequestLog_LogsActingUser(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	e.Use(mw.RequestLog(log))
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Contains(t, buf.String(), "user_id=alice")

	// Anonymous requests carry no user field.
	buf.Reset()
	req = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	e.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotContains(t, buf.String(), "user_id=")
}
