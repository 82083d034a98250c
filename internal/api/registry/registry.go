package registry

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cybersite/internal/api/controllers"
	"cybersite/internal/api/middleware"
	"cybersite/internal/config"
	"cybersite/internal/handlers"
	"cybersite/internal/models"
	"cybersite/internal/services"
	"cybersite/internal/utils"

	"gorm.io/gorm"
)

// Services is every service the HTTP layer talks to.
type Services struct {
	Auth         *services.AuthService
	Profiles     *services.ProfileService
	Users        *services.UserService
	Appointments *services.BaseServiceImpl[models.Appointment]
	Campaigns    *services.CampaignService
	CaseStudies  *services.BaseServiceImpl[models.CaseStudy]
	Events       *services.BaseServiceImpl[models.Event]
	Resources    *services.ResourceService
	Catalog      *services.ServiceCatalog
	Testimonials *services.TestimonialService
	Subscribers  *services.SubscriberService
	Settings     *services.SettingsService
	Renderer     *services.EmailRenderer
	Storage      services.Storage
}

// NewServices wires the services on one database. storage may be nil when
// uploads are disabled.
func NewServices(db *gorm.DB, cfg *config.Config, dispatcher services.Dispatcher, storage services.Storage) *Services {
	issuer := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	return &Services{
		Auth:         services.NewAuthService(db, issuer),
		Profiles:     services.NewProfileService(db, storage),
		Users:        services.NewUserService(db),
		Appointments: services.NewAppointmentService(db),
		Campaigns:    services.NewCampaignService(db, dispatcher),
		CaseStudies:  services.NewCaseStudyService(db),
		Events:       services.NewEventService(db),
		Resources:    services.NewResourceService(db),
		Catalog:      services.NewServiceCatalog(db),
		Testimonials: services.NewTestimonialService(db),
		Subscribers:  services.NewSubscriberService(db, dispatcher),
		Settings:     services.NewSettingsService(db),
		Renderer:     services.NewEmailRenderer(cfg),
		Storage:      storage,
	}
}

// 📝 RegisterCRUDRoutes registers the admin CRUD routes of every entity - godoc
// Each resource group checks "<resource>:<action>", the action following the
// HTTP method (read, create, update, delete).
// @Summary Admin CRUD routes
// @Description GET /api/admin/{entity} lists with page, limit, search and filters;
// @Description POST creates, GET /{id} reads, PATCH /{id} applies a partial update, DELETE /{id} removes.
// @Accept json
// @Produce json
// @Security BearerAuth
func RegisterCRUDRoutes(g *echo.Group, s *Services) {
	// Appointments
	appointmentController := controllers.NewBaseController[models.Appointment](s.Appointments)
	appointmentGroup := g.Group("/appointments", middleware.RequireScope("appointments"))
	appointmentController.RegisterRoutes(appointmentGroup, "")

	// Campaigns
	campaignController := controllers.NewBaseController[models.Campaign](s.Campaigns)
	campaignHandler := handlers.NewCampaignHandler(s.Campaigns)
	campaignGroup := g.Group("/campaigns", middleware.RequireScope("campaigns"))
	campaignController.RegisterRoutes(campaignGroup, "")
	campaignGroup.POST("/:id/send", campaignHandler.Send)

	templateGroup := g.Group("/campaign-templates", middleware.RequireScope("campaigns"))
	templateGroup.GET("", campaignHandler.ListTemplates)
	templateGroup.GET("/:id", campaignHandler.GetTemplate)

	// Case studies
	caseStudyController := controllers.NewBaseController[models.CaseStudy](s.CaseStudies)
	caseStudyGroup := g.Group("/case-studies", middleware.RequireScope("case-studies"))
	caseStudyController.RegisterRoutes(caseStudyGroup, "")

	// Events
	eventController := controllers.NewBaseController[models.Event](s.Events)
	eventGroup := g.Group("/events", middleware.RequireScope("events"))
	eventController.RegisterRoutes(eventGroup, "")

	contentHandler := handlers.NewContentHandler(s.Testimonials, s.Catalog, s.Resources)

	// Resources
	resourceController := controllers.NewBaseController[models.Resource](s.Resources)
	resourceGroup := g.Group("/resources", middleware.RequireScope("resources"))
	resourceController.RegisterRoutes(resourceGroup, "")
	resourceGroup.GET("/:id/downloads", contentHandler.ListDownloads)

	// Services
	serviceController := controllers.NewBaseController[models.Service](s.Catalog)
	serviceGroup := g.Group("/services", middleware.RequireScope("services"))
	serviceGroup.PUT("/reorder", contentHandler.ReorderServices)
	serviceController.RegisterRoutes(serviceGroup, "")

	// Testimonials
	testimonialController := controllers.NewBaseController[models.Testimonial](s.Testimonials)
	testimonialGroup := g.Group("/testimonials", middleware.RequireScope("testimonials"))
	testimonialController.RegisterRoutes(testimonialGroup, "")
	testimonialGroup.PUT("", contentHandler.BulkTestimonials)

	// Subscribers are created through the public form only
	subscriberController := controllers.NewBaseController[models.Subscriber](s.Subscribers)
	subscriberGroup := g.Group("/subscribers", middleware.RequireScope("subscribers"))
	subscriberController.RegisterRoutes(subscriberGroup, "", http.MethodGet, http.MethodDelete)

	// Settings
	settingsHandler := handlers.NewSettingsHandler(s.Settings)
	settingsGroup := g.Group("/settings", middleware.RequireScope("settings"))
	settingsGroup.GET("", settingsHandler.Get)
	settingsGroup.PATCH("", settingsHandler.Update)

	// Users
	userController := controllers.NewBaseController[models.User](s.Users)
	userHandler := handlers.NewUserHandler(s.Users)
	userGroup := g.Group("/users", middleware.RequireRole(models.UserRoleSuperAdmin))
	userGroup.POST("", userHandler.CreateUser)
	userController.RegisterRoutes(userGroup, "", http.MethodGet, http.MethodPatch, http.MethodDelete)
}
