package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/infrastructure/metrics"
	apperrors "storefront/pkg/errors"
)

// Metrics records count, errors and latency per route template.
func Metrics(m *metrics.AppMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				} else {
					status = apperrors.StatusOf(err)
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RecordHTTPRequest(c.Request().Context(), c.Request().Method, route, status, time.Since(start))

			return err
		}
	}
}
