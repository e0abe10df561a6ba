package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID string
	handler := RequestIDMiddleware()(func(c echo.Context) error {
		gotID = ExtractRequestID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if gotID == "" {
		t.Error("expected a generated request id in context")
	}
	if rec.Header().Get("X-Request-ID") != gotID {
		t.Error("expected X-Request-ID response header to match generated id")
	}
}

func TestRequestIDMiddlewareHonorsExistingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "existing-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID string
	handler := RequestIDMiddleware()(func(c echo.Context) error {
		gotID = ExtractRequestID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if gotID != "existing-id" {
		t.Errorf("expected existing-id, got %q", gotID)
	}
}

func TestLoggingMiddlewareDoesNotAlterResponse(t *testing.T) {
	log, err := NewLogger("development")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := LoggingMiddleware(log)(func(c echo.Context) error {
		return c.String(http.StatusTeapot, "ok")
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, rec.Code)
	}
}

func TestCorrelationIDMiddlewareGeneratesID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID string
	handler := CorrelationIDMiddleware()(func(c echo.Context) error {
		gotID = ExtractCorrelationID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if gotID == "" {
		t.Error("expected a generated correlation id in context")
	}
}
