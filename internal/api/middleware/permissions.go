package middleware

import (
	"net/http"

	"cybersite/internal/models"

	"github.com/labstack/echo/v4"
)

// GetRequiredPermissionForMethod returns the action a method needs on a resource
func GetRequiredPermissionForMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return models.ScopeRead
	case http.MethodPost:
		return models.ScopeCreate
	case http.MethodPut, http.MethodPatch:
		return models.ScopeUpdate
	case http.MethodDelete:
		return models.ScopeDelete
	default:
		return ""
	}
}

// HasPermission checks the current user's role against a "<resource>:<action>" scope.
func HasPermission(c echo.Context, scope string) bool {
	return models.RoleHasScope(models.UserRole(GetUserRole(c)), scope)
}

// RequireScope guards a resource: GET needs <resource>:read, POST
// <resource>:create, PUT and PATCH <resource>:update, DELETE <resource>:delete.
func RequireScope(resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			action := GetRequiredPermissionForMethod(c.Request().Method)
			if action == "" {
				return echo.NewHTTPError(http.StatusForbidden, "Invalid request method")
			}
			if !HasPermission(c, resource+":"+action) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireRole lets only the listed roles through.
func RequireRole(roles ...models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := models.UserRole(GetUserRole(c))
			for _, r := range roles {
				if r == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}
