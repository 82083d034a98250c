package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"cybersite/internal/api/controllers"
	"cybersite/internal/models"
	"cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

type NewsletterHandler struct {
	newsletter Newsletter
	siteURL    string
	log        *logger.Logger
}

// NewNewsletterHandler builds the subscription endpoints. Browser visits
// from email links are redirected to siteURL.
func NewNewsletterHandler(newsletter Newsletter, siteURL string) *NewsletterHandler {
	return &NewsletterHandler{
		newsletter: newsletter,
		siteURL:    strings.TrimRight(siteURL, "/"),
		log:        logger.New("NewsletterHandler"),
	}
}

type SubscribeRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Name  *string `json:"name" validate:"omitempty,max=120"`
}

// Subscribe registers an address and sends the confirmation email.
// @Summary Subscribe to the newsletter
// @Tags newsletter
// @Accept json
// @Produce json
// @Param request body SubscribeRequest true "Subscriber"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 429 {object} map[string]string "Too many requests"
// @Router /api/newsletter/subscribe [post]
func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return err
	}

	sub, err := h.newsletter.Subscribe(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		return controllers.ServiceError(err)
	}

	message := "Please check your inbox to confirm your subscription"
	if sub.Status == models.SubscriberStatusConfirmed {
		message = "You are already subscribed"
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"status":  string(sub.Status),
		"message": message,
	})
}

// Confirm activates a subscription from the link in the confirmation email.
// @Summary Confirm a subscription
// @Tags newsletter
// @Param token path string true "Subscriber token"
// @Success 200 {object} map[string]string
// @Success 302 "Redirect to the site"
// @Failure 404 {object} map[string]string "Unknown token"
// @Router /api/newsletter/confirm/{token} [get]
func (h *NewsletterHandler) Confirm(c echo.Context) error {
	sub, err := h.newsletter.Confirm(c.Request().Context(), c.Param("token"))
	if err != nil {
		return controllers.ServiceError(err)
	}
	h.log.Info("Subscriber %s confirmed", sub.ID)
	return h.respond(c, sub, "confirmed")
}

// Unsubscribe stops campaign email for the token's owner. POST serves
// one-click unsubscribe from mail clients.
// @Summary Unsubscribe
// @Tags newsletter
// @Param token path string true "Subscriber token"
// @Success 200 {object} map[string]string
// @Success 302 "Redirect to the site"
// @Failure 404 {object} map[string]string "Unknown token"
// @Router /api/newsletter/unsubscribe/{token} [get]
// @Router /api/newsletter/unsubscribe/{token} [post]
func (h *NewsletterHandler) Unsubscribe(c echo.Context) error {
	sub, err := h.newsletter.Unsubscribe(c.Request().Context(), c.Param("token"))
	if err != nil {
		return controllers.ServiceError(err)
	}
	h.log.Info("Subscriber %s unsubscribed", sub.ID)
	return h.respond(c, sub, "unsubscribed")
}

func (h *NewsletterHandler) respond(c echo.Context, sub *models.Subscriber, result string) error {
	if c.Request().Method == http.MethodGet && h.siteURL != "" &&
		!strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		q := url.Values{"newsletter": {result}}
		return c.Redirect(http.StatusFound, h.siteURL+"/?"+q.Encode())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": string(sub.Status),
	})
}
