package routes

import (
	"cybersite/internal/api/middleware"
	"cybersite/internal/api/registry"
	"cybersite/internal/handlers"

	"github.com/labstack/echo/v4"
)

// SetupAuthRoutes registers login and the signed-in admin's own routes.
// admin must already run the auth middleware.
func SetupAuthRoutes(api *echo.Group, admin *echo.Group, svcs *registry.Services, loginLimiter middleware.Limiter) {
	authHandler := handlers.NewAuthHandler(svcs.Auth, svcs.Profiles)

	// Public routes (no auth required)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login, middleware.FormRateLimit(loginLimiter, 60))
	auth.POST("/refresh", authHandler.RefreshToken)

	// Any authenticated user
	admin.GET("/me", authHandler.GetMe)
	admin.POST("/logout", authHandler.Logout)

	profile := admin.Group("/profile")
	profile.PATCH("", authHandler.UpdateProfile)
	profile.POST("", authHandler.UploadProfileImage)
	profile.DELETE("", authHandler.RemoveProfileImage)
	profile.POST("/image", authHandler.UploadProfileImage)
	profile.DELETE("/image", authHandler.RemoveProfileImage)
	profile.POST("/password", authHandler.ChangePassword)
}
