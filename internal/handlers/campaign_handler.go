package handlers

import (
	"net/http"

	"cybersite/internal/api/controllers"
	"cybersite/internal/templates"
	"cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

type CampaignHandler struct {
	campaigns Campaigns
	log       *logger.Logger
}

func NewCampaignHandler(campaigns Campaigns) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, log: logger.New("CampaignHandler")}
}

// Send queues a draft campaign for every confirmed subscriber.
// @Summary Send campaign
// @Tags campaigns
// @Security BearerAuth
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} map[string]int "sentCount"
// @Failure 400 {object} map[string]string "No confirmed subscribers"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Campaign is not a draft"
// @Router /api/admin/campaigns/{id}/send [post]
func (h *CampaignHandler) Send(c echo.Context) error {
	id := c.Param("id")
	sent, err := h.campaigns.Send(c.Request().Context(), id)
	if err != nil {
		return controllers.ServiceError(err)
	}
	h.log.Success("Campaign %s sent to %d subscribers", id, sent)
	return c.JSON(http.StatusOK, map[string]int{"sentCount": sent})
}

// ListTemplates returns the built-in campaign templates.
// @Summary List campaign templates
// @Tags campaigns
// @Security BearerAuth
// @Produce json
// @Param category query string false "Template category"
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/campaign-templates [get]
func (h *CampaignHandler) ListTemplates(c echo.Context) error {
	category := templates.Category(c.QueryParam("category"))
	if category != "" && category != "all" && !templates.IsValidCategory(category) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown template category")
	}
	if category == "all" {
		category = ""
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"templates":  templates.List(category),
		"categories": templates.Categories,
	})
}

// GetTemplate returns one template by id.
// @Summary Get campaign template
// @Tags campaigns
// @Security BearerAuth
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} templates.Template
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/admin/campaign-templates/{id} [get]
func (h *CampaignHandler) GetTemplate(c echo.Context) error {
	t, ok := templates.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "template not found")
	}
	return c.JSON(http.StatusOK, t)
}
