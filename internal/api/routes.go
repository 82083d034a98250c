package api

import (
	"cybersite/internal/api/middleware"
	"cybersite/internal/api/registry"
	"cybersite/internal/metrics"
	"cybersite/internal/routes"

	_ "cybersite/docs/swagger"

	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	// Health check
	// @Summary Health check
	// @Description Check if the server and its database are up
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Failure 503 {object} map[string]string "Database unreachable"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)
	s.echo.GET("/metrics", metrics.Handler())

	api := s.echo.Group("/api")
	routes.SetupPublicRoutes(api, s.services, s.config.Site.URL, s.limiters.Forms)

	admin := api.Group("/admin")
	auth := middleware.NewAuthMiddleware(s.services.Auth)
	admin.Use(auth.Middleware())

	routes.SetupAuthRoutes(api, admin, s.services, s.limiters.Login)

	// Register CRUD routes for all models
	registry.RegisterCRUDRoutes(admin, s.services)

	routes.SetupUploadRoutes(admin, s.services.Storage, s.config)
}
