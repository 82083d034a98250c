package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cybersite/internal/services"
	"cybersite/internal/utils"
	"cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

var log = logger.New("auth_middleware")

// Authenticator resolves an access token to its claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.Claims, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.SplitN(authHeader, " ", 2)
			if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") || tokenParts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}
			token := strings.TrimSpace(tokenParts[1])

			claims, err := m.auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, services.ErrUnauthorized) {
					log.Warn("Token check failed: %v", err)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set("userID", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			c.Set("scopes", claims.Scopes)
			c.Set("token", token)

			return next(c)
		}
	}
}

// GetUserID Helper functions to get values from context
func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

func GetUserRole(c echo.Context) string {
	if role, ok := c.Get("role").(string); ok {
		return role
	}
	return ""
}

func GetScopes(c echo.Context) []string {
	if scopes, ok := c.Get("scopes").([]string); ok {
		return scopes
	}
	return nil
}

// GetToken returns the bearer token of the current request.
func GetToken(c echo.Context) string {
	if token, ok := c.Get("token").(string); ok {
		return token
	}
	return ""
}
