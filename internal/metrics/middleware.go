package metrics

import (
	"time"

	"github.com/labstack/echo/v4"
)

// EchoMiddleware records RecordHTTPRequest for every request the Echo
// router serves.
func (m *Registry) EchoMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			m.RecordHTTPRequest(c.Request().Method, c.Path(), c.Response().Status, time.Since(start).Seconds())
			return err
		}
	}
}
