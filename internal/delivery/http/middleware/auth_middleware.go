// Package middleware contains the echo middleware for the HTTP delivery.
package middleware

import (
	"net/http"
	"strings"

	"telecare/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Context keys under which the authenticated user's identity is stored.
const (
	ContextKeyUserID   = "userID"
	ContextKeyUserType = "userType"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate is the core middleware function that validates the JWT access token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header is missing"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token format, must be Bearer token"})
		}

		claims, err := m.tokenSvc.ValidateAccessToken(tokenString)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		// Set user info on the context for handlers to use
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUserType, claims.UserType)

		return next(c)
	}
}

// RequireUserType is a middleware factory that checks the user's role claim.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireUserType(requiredType string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userType, ok := c.Get(ContextKeyUserType).(string)
			if !ok || userType == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Permission denied: role information missing"})
			}

			if userType != requiredType {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Permission denied: require '" + requiredType + "' role"})
			}

			return next(c)
		}
	}
}
