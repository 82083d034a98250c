package handlers

import (
	"context"
	"net/http"

	"cybersite/internal/api/controllers"
	"cybersite/internal/models"
	"cybersite/internal/utils"
	"cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

type AppointmentCreator interface {
	Create(ctx context.Context, entity *models.Appointment) error
}

type TestimonialSubmitter interface {
	Submit(ctx context.Context, t *models.Testimonial) error
}

type DownloadRecorder interface {
	RecordDownload(ctx context.Context, resourceID string, download *models.ResourceDownload) (*models.Resource, error)
}

// PublicHandler serves the forms of the marketing site.
type PublicHandler struct {
	appointments AppointmentCreator
	testimonials TestimonialSubmitter
	resources    DownloadRecorder
	log          *logger.Logger
}

func NewPublicHandler(appointments AppointmentCreator, testimonials TestimonialSubmitter, resources DownloadRecorder) *PublicHandler {
	return &PublicHandler{
		appointments: appointments,
		testimonials: testimonials,
		resources:    resources,
		log:          logger.New("PublicHandler"),
	}
}

type DownloadRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=120"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Company *string `json:"company" validate:"omitempty,max=120"`
}

// BookAppointment stores a booking request from the site. Bookings always
// start pending.
// @Summary Book an appointment
// @Tags public
// @Accept json
// @Produce json
// @Param appointment body models.Appointment true "Booking"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /api/appointments [post]
func (h *PublicHandler) BookAppointment(c echo.Context) error {
	var a models.Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a.ID = ""
	a.Status = models.AppointmentStatusPending
	a.Notes = nil
	a.MeetingURL = nil
	a.ConfirmedAt, a.CompletedAt, a.CancelledAt = nil, nil, nil

	a.Normalize()
	if err := c.Validate(&a); err != nil {
		return err
	}
	if err := h.appointments.Create(c.Request().Context(), &a); err != nil {
		return controllers.ServiceError(err)
	}

	h.log.Info("New %s booking from %s", a.Type, a.ClientEmail)
	return c.JSON(http.StatusCreated, map[string]string{
		"id":      a.ID,
		"message": "Thanks, we will confirm your appointment shortly",
	})
}

// SubmitTestimonial stores a testimonial for moderation.
// @Summary Submit a testimonial
// @Tags public
// @Accept json
// @Produce json
// @Param testimonial body models.Testimonial true "Testimonial"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/testimonials [post]
func (h *PublicHandler) SubmitTestimonial(c echo.Context) error {
	var t models.Testimonial
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	t.Status = models.TestimonialStatusPending
	t.Featured, t.Verified, t.VerifiedAt = false, false, nil
	t.Source = models.TestimonialSourceWebsite

	t.Normalize()
	if err := c.Validate(&t); err != nil {
		return err
	}
	if err := h.testimonials.Submit(c.Request().Context(), &t); err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"id":      t.ID,
		"message": "Thanks for your feedback",
	})
}

// DownloadResource records a download and returns the file link.
// @Summary Download a resource
// @Tags public
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param request body DownloadRequest false "Lead details"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/resources/{id}/download [post]
func (h *PublicHandler) DownloadResource(c echo.Context) error {
	var req DownloadRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	download := &models.ResourceDownload{
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		IPAddress: c.RealIP(),
		UserAgent: utils.TruncateUserAgent(c.Request().UserAgent()),
	}
	resource, err := h.resources.RecordDownload(c.Request().Context(), c.Param("id"), download)
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"fileUrl":       resource.FileURL,
		"fileName":      resource.FileName,
		"downloadCount": resource.DownloadCount,
	})
}
