package handlers

import (
	"io"
	"net/http"

	"cybersite/internal/api/controllers"
	"cybersite/internal/models"

	"github.com/labstack/echo/v4"
)

type SettingsHandler struct {
	settings SiteSettings
}

func NewSettingsHandler(settings SiteSettings) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the site settings.
// @Summary Get site settings
// @Tags settings
// @Produce json
// @Success 200 {object} models.Settings
// @Router /api/settings [get]
// @Router /api/admin/settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	settings, err := h.settings.Get(c.Request().Context())
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

// Update applies a partial body to the site settings.
// @Summary Update site settings
// @Tags settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param settings body models.Settings true "Fields to change"
// @Success 200 {object} models.Settings
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/admin/settings [patch]
func (h *SettingsHandler) Update(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	settings, err := h.settings.Update(c.Request().Context(), func(s *models.Settings) error {
		if err := controllers.Overlay(s, body); err != nil {
			return err
		}
		s.Normalize()
		return c.Validate(s)
	})
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, settings)
}
