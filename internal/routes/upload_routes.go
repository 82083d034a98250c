package routes

import (
	"cybersite/internal/api/middleware"
	"cybersite/internal/config"
	"cybersite/internal/handlers"
	"cybersite/internal/services"
	"cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

func SetupUploadRoutes(admin *echo.Group, storage services.Storage, cfg *config.Config) {
	log := logger.New("upload_routes")

	uploadHandler := handlers.NewUploadHandler(storage, cfg.Storage.MaxUploadSize)

	uploadGroup := admin.Group("/upload", middleware.RequireScope("uploads"))
	uploadGroup.POST("", uploadHandler.UploadFile)
	uploadGroup.DELETE("", uploadHandler.DeleteFile)

	if storage == nil {
		log.Warn("Object storage is not configured, uploads will answer 503")
		return
	}
	log.Success("Upload routes initialized successfully")
}
