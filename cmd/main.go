package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cybersite/docs/swagger"
	"cybersite/internal/api"
	"cybersite/internal/api/registry"
	"cybersite/internal/config"
	"cybersite/internal/db"
	"cybersite/internal/models"
	"cybersite/internal/services"
	"cybersite/internal/tasks"
	"cybersite/internal/tasks/rate"
	"cybersite/internal/utils/logger"

	"github.com/joho/godotenv"
)

// 🚀 Main function
// @title CyberSite API
// @version 1.0
// @description Marketing site and CMS API
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {

	logger := logger.New("cybersite")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection: %v", err)
		}
	}()

	dbInstance := db.GetDB()

	if err := models.CreateSuperAdminFromEnv(dbInstance, cfg); err != nil {
		logger.Warn("Failed to create super admin: %v", err)
	}
	if err := models.SeedSettings(dbInstance, cfg); err != nil {
		logger.Warn("Failed to seed settings: %v", err)
	}

	// Object storage is optional; uploads answer 503 without it
	var storage services.Storage
	if cfg.Storage.Provider == "s3" {
		s3Service, err := services.NewS3Service(context.Background(), cfg)
		if err != nil {
			logger.Warn("S3 storage unavailable, uploads disabled: %v", err)
		} else {
			storage = s3Service
		}
	}

	// Background queue and the redis limiters
	taskClient := tasks.NewTaskClient(cfg.Redis)
	defer taskClient.Close()

	redisClient := tasks.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	sendLimiter := rate.NewLimiter(redisClient, rate.Config{
		Name:      "smtp",
		RateLimit: rate.RateLimit{Window: cfg.Campaign.SendWindow, Max: cfg.Campaign.SendRate},
	})
	formLimiter := rate.NewLimiter(redisClient, rate.Config{
		Name:      "forms",
		RateLimit: rate.RateLimit{Window: cfg.Server.FormRateWindow, Max: cfg.Server.FormRateMax},
	})
	loginLimiter := rate.NewLimiter(redisClient, rate.Config{
		Name:      "login",
		RateLimit: rate.RateLimit{Window: 15 * time.Minute, Max: 10},
	})

	// Services
	svcs := registry.NewServices(dbInstance, cfg, taskClient, storage)
	svcs.Campaigns.ListenForSubscribers()

	delivery := services.NewDelivery(dbInstance, services.NewSMTPMailer(cfg.Mail), svcs.Renderer)

	// Initialize task server
	taskHandler := tasks.NewTaskHandler(delivery, svcs.Campaigns, sendLimiter)
	taskServer := tasks.NewServer(cfg.Redis, cfg.Worker.Concurrency, cfg.Campaign.SendWindow, taskHandler, logger)
	if err := taskServer.Start(); err != nil {
		_ = logger.Error("Task server error", err)
	}

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(cfg.Redis, cfg.Campaign.RecurringSpec, logger)
	if err := taskScheduler.Start(); err != nil {
		_ = logger.Error("Task scheduler error", err)
	}

	// Initialize API server
	if u, err := url.Parse(cfg.Server.PublicURL); err == nil && u.Host != "" {
		swagger.SwaggerInfo.Host = u.Host
		swagger.SwaggerInfo.Schemes = []string{u.Scheme}
	}
	apiServer := api.NewServer(cfg, dbInstance, svcs, api.Limiters{
		Forms: formLimiter,
		Login: loginLimiter,
	})
	go func() {
		logger.Success("API server listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			logger.Warn("API server stopped: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		_ = logger.Error("Failed to shutdown API server", err)
	}

	taskScheduler.Stop()
	taskServer.Shutdown()

	logger.Info("Servers shutdown gracefully")
}
