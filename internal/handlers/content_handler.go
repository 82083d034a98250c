package handlers

import (
	"context"
	"net/http"

	"cybersite/internal/api/controllers"
	"cybersite/internal/models"
	"cybersite/internal/services"

	"github.com/labstack/echo/v4"
)

// Moderation applies bulk testimonial actions.
type Moderation interface {
	BulkAction(ctx context.Context, ids []string, action models.TestimonialAction) (int64, error)
}

// Reorderer sets the display order of services.
type Reorderer interface {
	Reorder(ctx context.Context, ids []string) error
}

// Downloads lists the recorded downloads of a resource.
type Downloads interface {
	ListDownloads(ctx context.Context, resourceID string, params services.ListParams) (*services.ListResult[models.ResourceDownload], error)
}

type ContentHandler struct {
	testimonials Moderation
	catalog      Reorderer
	resources    Downloads
}

func NewContentHandler(testimonials Moderation, catalog Reorderer, resources Downloads) *ContentHandler {
	return &ContentHandler{testimonials: testimonials, catalog: catalog, resources: resources}
}

type BulkTestimonialRequest struct {
	IDs    []string                 `json:"ids" validate:"required,min=1,dive,required"`
	Action models.TestimonialAction `json:"action" validate:"required"`
}

type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// BulkTestimonials moderates several testimonials in one transaction.
// @Summary Bulk testimonial action
// @Tags testimonials
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BulkTestimonialRequest true "ids and action"
// @Success 200 {object} map[string]int64 "updated"
// @Failure 400 {object} map[string]string "Unknown action"
// @Failure 404 {object} map[string]string "Unknown id"
// @Router /api/admin/testimonials [put]
func (h *ContentHandler) BulkTestimonials(c echo.Context) error {
	var req BulkTestimonialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.testimonials.BulkAction(c.Request().Context(), req.IDs, req.Action)
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

// ReorderServices sets displayOrder to each id's position.
// @Summary Reorder services
// @Tags services
// @Security BearerAuth
// @Accept json
// @Param request body ReorderRequest true "Service ids in display order"
// @Success 204 "No content"
// @Router /api/admin/services/reorder [put]
func (h *ContentHandler) ReorderServices(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.catalog.Reorder(c.Request().Context(), req.IDs); err != nil {
		return controllers.ServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListDownloads pages through the downloads of a resource.
// @Summary List resource downloads
// @Tags resources
// @Security BearerAuth
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/resources/{id}/downloads [get]
func (h *ContentHandler) ListDownloads(c echo.Context) error {
	params := services.ListParams{Search: c.QueryParam("search")}
	if err := echo.QueryParamsBinder(c).
		Int("page", &params.Page).
		Int("limit", &params.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page and limit must be numbers")
	}

	result, err := h.resources.ListDownloads(c.Request().Context(), c.Param("id"), params)
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"downloads":  result.Items,
		"pagination": result.Pagination,
	})
}
