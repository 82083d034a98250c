package routes

import (
	"cybersite/internal/api/controllers"
	"cybersite/internal/api/middleware"
	"cybersite/internal/api/registry"
	"cybersite/internal/handlers"
	"cybersite/internal/models"

	"github.com/labstack/echo/v4"
)

// formRetryAfter is the Retry-After hint, in seconds, of throttled form posts.
const formRetryAfter = 60

// SetupPublicRoutes registers what the marketing site reads and posts
// without signing in. formLimiter may be nil.
func SetupPublicRoutes(api *echo.Group, svcs *registry.Services, siteURL string, formLimiter middleware.Limiter) {
	throttle := middleware.FormRateLimit(formLimiter, formRetryAfter)

	settingsHandler := handlers.NewSettingsHandler(svcs.Settings)
	api.GET("/settings", settingsHandler.Get)

	// Published content
	services := controllers.NewBaseController[models.Service](svcs.Catalog).Public(controllers.PublicView[models.Service]{
		Filters: map[string]string{"isActive": "true"},
		Visible: func(s *models.Service) bool { return s.IsActive },
	})
	api.GET("/services", services.List)
	api.GET("/services/:slug", services.GetBySlug)

	caseStudies := controllers.NewBaseController[models.CaseStudy](svcs.CaseStudies).Public(controllers.PublicView[models.CaseStudy]{
		Filters: map[string]string{"status": string(models.PublishStatusPublished)},
		Visible: func(cs *models.CaseStudy) bool { return cs.Status == models.PublishStatusPublished },
	})
	api.GET("/case-studies", caseStudies.List)
	api.GET("/case-studies/:slug", caseStudies.GetBySlug)

	events := controllers.NewBaseController[models.Event](svcs.Events).Public(controllers.PublicView[models.Event]{
		Exclude: map[string][]string{"status": {string(models.EventStatusDraft)}},
		Visible: func(e *models.Event) bool { return e.Status != models.EventStatusDraft },
	})
	api.GET("/events", events.List)
	api.GET("/events/:slug", events.GetBySlug)

	resources := controllers.NewBaseController[models.Resource](svcs.Resources).Public(controllers.PublicView[models.Resource]{
		Filters: map[string]string{"status": string(models.PublishStatusPublished)},
		Visible: func(r *models.Resource) bool { return r.Status == models.PublishStatusPublished },
	})
	api.GET("/resources", resources.List)
	api.GET("/resources/:slug", resources.GetBySlug)

	testimonials := controllers.NewBaseController[models.Testimonial](svcs.Testimonials).Public(controllers.PublicView[models.Testimonial]{
		Filters: map[string]string{"status": string(models.TestimonialStatusApproved)},
		Redact:  func(t *models.Testimonial) { t.Email = nil },
	})
	api.GET("/testimonials", testimonials.List)

	// Forms
	publicHandler := handlers.NewPublicHandler(svcs.Appointments, svcs.Testimonials, svcs.Resources)
	api.POST("/appointments", publicHandler.BookAppointment, throttle)
	api.POST("/testimonials", publicHandler.SubmitTestimonial, throttle)
	api.POST("/resources/:id/download", publicHandler.DownloadResource, throttle)

	// Newsletter
	newsletterHandler := handlers.NewNewsletterHandler(svcs.Subscribers, siteURL)
	newsletter := api.Group("/newsletter")
	newsletter.POST("/subscribe", newsletterHandler.Subscribe, throttle)
	newsletter.GET("/confirm/:token", newsletterHandler.Confirm)
	newsletter.GET("/unsubscribe/:token", newsletterHandler.Unsubscribe)
	newsletter.POST("/unsubscribe/:token", newsletterHandler.Unsubscribe)

	// Email tracking
	trackingHandler := handlers.NewTrackingHandler(svcs.Campaigns, svcs.Renderer.Signer())
	api.GET("/track/open/:id", trackingHandler.Open)
	api.GET("/track/click/:id", trackingHandler.Click)
}
