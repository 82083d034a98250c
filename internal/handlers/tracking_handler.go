package handlers

import (
	"net/http"

	"cybersite/internal/metrics"
	"cybersite/internal/services"
	"cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

// 1x1 transparent GIF
var pixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type TrackingHandler struct {
	campaigns Campaigns
	links     LinkResolver
	log       *logger.Logger
}

func NewTrackingHandler(campaigns Campaigns, links LinkResolver) *TrackingHandler {
	return &TrackingHandler{campaigns: campaigns, links: links, log: logger.New("TrackingHandler")}
}

// Open counts an email open and serves the tracking pixel.
// @Summary Track an email open
// @Tags tracking
// @Produce image/gif
// @Param id path string true "Campaign ID"
// @Success 200 {file} binary
// @Router /api/track/open/{id} [get]
func (h *TrackingHandler) Open(c echo.Context) error {
	id := c.Param("id")
	if err := h.campaigns.RecordOpen(c.Request().Context(), id); err != nil {
		if !services.IsNotFound(err) {
			h.log.Warn("Failed to record open for %s: %v", id, err)
		}
	} else {
		metrics.TrackingEvents.WithLabelValues("open").Inc()
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store, no-cache, must-revalidate")
	return c.Blob(http.StatusOK, "image/gif", pixel)
}

// Click counts a link click and redirects to the original target. Links
// whose signature does not match are refused.
// @Summary Track a link click
// @Tags tracking
// @Param id path string true "Campaign ID"
// @Param u query string true "Encoded target"
// @Param s query string true "Signature"
// @Success 302 "Redirect to the target"
// @Failure 400 {object} map[string]string "Invalid link"
// @Router /api/track/click/{id} [get]
func (h *TrackingHandler) Click(c echo.Context) error {
	id := c.Param("id")
	target, err := h.links.ResolveClick(id, c.QueryParam("u"), c.QueryParam("s"))
	if err != nil {
		h.log.Warn("Rejected click link for %s: %v", id, err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tracking link")
	}

	if err := h.campaigns.RecordClick(c.Request().Context(), id); err != nil {
		if !services.IsNotFound(err) {
			h.log.Warn("Failed to record click for %s: %v", id, err)
		}
	} else {
		metrics.TrackingEvents.WithLabelValues("click").Inc()
	}

	return c.Redirect(http.StatusFound, target)
}
