package logger

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDMiddleware injects a request ID (from X-Request-ID, or a fresh
// UUID) into the request context, mirroring the teacher's net/http
// middleware but wired for Echo's handler chain.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			ctx := WithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-Request-ID", requestID)
			return next(c)
		}
	}
}

// LoggingMiddleware logs method/path/status/duration for every request,
// at Error level for 4xx/5xx and Info otherwise.
func LoggingMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			durationMS := time.Since(start).Milliseconds()

			status := c.Response().Status
			requestID := ExtractRequestID(c.Request().Context())
			fields := []interface{}{
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"duration_ms", durationMS,
			}
			if status >= 400 {
				log.Errorw("HTTP request processed", fields...)
			} else {
				log.Infow("HTTP request processed", fields...)
			}
			return err
		}
	}
}

// CorrelationIDMiddleware injects a correlation ID (from X-Correlation-ID,
// or a fresh UUID) for tracking a webhook delivery through downstream
// service calls.
func CorrelationIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			correlationID := c.Request().Header.Get("X-Correlation-ID")
			if correlationID == "" {
				correlationID = uuid.New().String()
			}
			ctx := WithCorrelationID(c.Request().Context(), correlationID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
