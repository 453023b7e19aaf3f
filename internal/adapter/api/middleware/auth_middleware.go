package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/pkg/logger"
)

const (
	ContextKeyUID  = "uid"
	ContextKeyRole = "role"
)

// RoleResolver looks up the stored role of an authenticated principal.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}

type AuthMiddleware struct {
	verifier service.TokenVerifier
	roles    RoleResolver
}

func NewAuthMiddleware(verifier service.TokenVerifier, roles RoleResolver) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		roles:    roles,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		uid, role, err := m.Identify(c.Request().Context(), parts[1])
		if err != nil {
			return err
		}

		c.Set(ContextKeyUID, uid)
		c.Set(ContextKeyRole, role)

		return next(c)
	}
}

// Identify verifies token and resolves the principal's role. The WebSocket
// endpoint uses it directly since browsers cannot set headers on upgrade.
func (m *AuthMiddleware) Identify(ctx context.Context, token string) (string, string, error) {
	uid, err := m.verifier.Verify(ctx, token)
	if err != nil {
		logger.Debug("Token rejected: %v", err)
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
	}

	role, err := m.roles.RoleOf(ctx, uid)
	if err != nil {
		logger.Error("Failed to resolve role for %s: %v", uid, err)
		return "", "", echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify user role")
	}

	return uid, role, nil
}

// UserID returns the authenticated user id, or "" outside Authenticate.
func UserID(c echo.Context) string {
	uid, _ := c.Get(ContextKeyUID).(string)
	return uid
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(ContextKeyRole).(string)
	return role == entity.RoleAdmin
}
