package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminOnly must run after Authenticate.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if UserID(c) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		if !IsAdmin(c) {
			return echo.NewHTTPError(http.StatusForbidden, "Not authorized as an admin")
		}

		return next(c)
	}
}
