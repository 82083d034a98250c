package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-advanced-admin/admin"
	admingorm "github.com/go-advanced-admin/orm-gorm"
	adminecho "github.com/go-advanced-admin/web-echo"
	"golang.org/x/time/rate"

	apimw "cybersite/internal/api/middleware"
	"cybersite/internal/api/registry"
	"cybersite/internal/api/validator"
	"cybersite/internal/config"
	"cybersite/internal/metrics"
	"cybersite/internal/models"

	console "cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// Limiters throttle the public forms and the login endpoint. Either may be
// nil, which turns that throttle off.
type Limiters struct {
	Forms apimw.Limiter
	Login apimw.Limiter
}

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	db       *gorm.DB
	services *registry.Services
	limiters Limiters
}

var log = console.New("API-Server")

// NewServer @title CyberSite API
// @version 1.0
// @description Public site and admin API of the consultancy website.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func NewServer(cfg *config.Config, db *gorm.DB, svcs *registry.Services, limiters Limiters) *Server {
	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = ipExtractor(cfg.Server.TrustedProxies)

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(metrics.Middleware())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: cfg.Server.RequestTimeout,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	if cfg.Server.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	s := &Server{
		echo:     e,
		config:   cfg,
		db:       db,
		services: svcs,
		limiters: limiters,
	}

	s.registerRoutes()
	if cfg.Server.AdminPanel {
		s.mountAdminPanel()
	}
	return s
}

// ipExtractor resolves the client IP used by the per-IP throttles.
// X-Forwarded-For is only honoured when it comes from a trusted proxy.
func ipExtractor(trusted []string) echo.IPExtractor {
	var options []echo.TrustOption
	for _, cidr := range trusted {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			log.Warn("Ignoring trusted proxy %q: %v", cidr, err)
			continue
		}
		options = append(options, echo.TrustIPRange(network))
	}
	if len(options) == 0 {
		return echo.ExtractIPDirect()
	}
	options = append(options,
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	)
	return echo.ExtractIPFromXFFHeader(options...)
}

// mountAdminPanel serves the generated table browser to super admins only.
func (s *Server) mountAdminPanel() {
	gormIntegrator := admingorm.NewIntegrator(s.db)

	group := s.echo.Group("/panel", apimw.NewAuthMiddleware(s.services.Auth).Middleware())
	echoIntegrator := adminecho.NewIntegrator(group)

	permissionChecker := func(
		request admin.PermissionRequest, ctx interface{},
	) (bool, error) {
		c, ok := ctx.(echo.Context)
		if !ok {
			return false, nil
		}
		return apimw.GetUserRole(c) == string(models.UserRoleSuperAdmin), nil
	}

	adminPanel, err := admin.NewPanel(
		gormIntegrator, echoIntegrator, permissionChecker, nil,
	)
	if err != nil {
		log.Warn("Admin panel disabled: %v", err)
		return
	}

	app, err := adminPanel.RegisterApp(
		"CyberSite",
		"CyberSite Admin Panel",
		nil,
	)
	if err != nil {
		log.Warn("Admin panel disabled: %v", err)
		return
	}
	for _, model := range models.All() {
		if _, err := app.RegisterModel(model, nil); err != nil {
			log.Warn("Admin panel skipped %T: %v", model, err)
		}
	}
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router to tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	status := "healthy"
	code := http.StatusOK
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"status":  status,
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Custom HTTP error handler
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code   = http.StatusInternalServerError
		fields map[string]string
	)
	message := interface{}(http.StatusText(code))

	var (
		he *echo.HTTPError
		ve validator.ValidationErrors
	)
	switch {
	case errors.As(err, &he):
		code = he.Code
		message = he.Message
		if he.Internal != nil {
			_ = log.Error("%s %s", he.Internal, c.Request().Method, c.Path())
		}
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		message = "validation failed"
		fields = ve.Fields()
	default:
		_ = log.Error("%s %s", err, c.Request().Method, c.Path())
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		body := map[string]interface{}{
			"error": message,
			"code":  code,
			"time":  time.Now().Format(time.RFC3339),
		}
		if fields != nil {
			body["fields"] = fields
		}
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Echo().Logger.Error(err)
	}
}
