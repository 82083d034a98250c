package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"cybersite/internal/models"
	"cybersite/internal/services"

	"github.com/labstack/echo/v4"
)

// PublicView restricts a controller to what the public site may see.
type PublicView[T any] struct {
	// Filters are forced onto every list and override the query string.
	Filters map[string]string
	// Exclude hides rows whose filter column holds one of the values.
	Exclude map[string][]string
	// Visible decides whether a single record may be shown.
	Visible func(*T) bool
	// Redact clears private fields before a record is rendered.
	Redact func(*T)
}

// BaseController provides generic CRUD operations for any model
type BaseController[T any] struct {
	service services.BaseService[T]
	public  *PublicView[T]
}

// NewBaseController creates a new base controller
func NewBaseController[T any](service services.BaseService[T]) *BaseController[T] {
	return &BaseController[T]{
		service: service,
	}
}

// Public returns a read-only controller over the same service.
func (c *BaseController[T]) Public(view PublicView[T]) *BaseController[T] {
	return &BaseController[T]{service: c.service, public: &view}
}

var reservedParams = map[string]bool{"page": true, "limit": true, "search": true}

// listParams reads pagination, search and filters from the query string.
func listParams(ctx echo.Context) services.ListParams {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	filters := make(map[string]string)
	for key, values := range ctx.QueryParams() {
		if !reservedParams[key] && len(values) > 0 {
			filters[key] = values[0]
		}
	}

	return services.ListParams{
		Page:    page,
		Limit:   limit,
		Search:  ctx.QueryParam("search"),
		Filters: filters,
	}
}

func (c *BaseController[T]) visible(entity *T) bool {
	return c.public == nil || c.public.Visible == nil || c.public.Visible(entity)
}

func (c *BaseController[T]) present(entity *T) *T {
	if c.public != nil && c.public.Redact != nil {
		c.public.Redact(entity)
	}
	return entity
}

// List handles retrieval of multiple entities with pagination and filtering
func (c *BaseController[T]) List(ctx echo.Context) error {
	params := listParams(ctx)
	if c.public != nil {
		for k, v := range c.public.Filters {
			params.Filters[k] = v
		}
		params.Exclude = c.public.Exclude
	}

	result, err := c.service.List(ctx.Request().Context(), params)
	if err != nil {
		return ServiceError(err)
	}
	for i := range result.Items {
		c.present(&result.Items[i])
	}

	body := map[string]interface{}{
		c.service.Spec().Collection: result.Items,
		"pagination":                result.Pagination,
	}
	if result.StatusCounts != nil && c.public == nil {
		body["statusCounts"] = result.StatusCounts
	}
	return ctx.JSON(http.StatusOK, body)
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}
	entity, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return ServiceError(err)
	}
	if !c.visible(entity) {
		return ServiceError(services.ErrNotFound)
	}
	return ctx.JSON(http.StatusOK, c.present(entity))
}

// GetBySlug serves detail pages of the public site.
func (c *BaseController[T]) GetBySlug(ctx echo.Context) error {
	slug := strings.ToLower(strings.TrimSpace(ctx.Param("slug")))
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing slug parameter")
	}
	entity, err := c.service.GetBy(ctx.Request().Context(), "slug", slug)
	if err != nil {
		return ServiceError(err)
	}
	if !c.visible(entity) {
		return ServiceError(services.ErrNotFound)
	}
	return ctx.JSON(http.StatusOK, c.present(entity))
}

// Create handles creation of new entities
func (c *BaseController[T]) Create(ctx echo.Context) error {
	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// id and timestamps are assigned by the store
	if e, ok := any(&entity).(models.Entity); ok {
		*e.BaseModel() = models.Base{}
	}

	models.Normalize(&entity)
	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	if err := c.service.Create(ctx.Request().Context(), &entity); err != nil {
		return ServiceError(err)
	}

	return ctx.JSON(http.StatusCreated, entity)
}

// Update applies a partial body on top of the stored entity. Keys absent
// from the body keep their stored value.
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	entity, err := c.service.Update(ctx.Request().Context(), id, func(next *T) error {
		if err := Overlay(next, body); err != nil {
			return err
		}
		models.Normalize(next)
		return ctx.Validate(next)
	})
	if err != nil {
		return ServiceError(err)
	}

	return ctx.JSON(http.StatusOK, entity)
}

// Delete handles deletion of an entity
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return ServiceError(err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RegisterRoutes registers CRUD routes for the controller
func (c *BaseController[T]) RegisterRoutes(g *echo.Group, path string, methods ...string) {
	if len(methods) == 0 {
		methods = []string{http.MethodPost, http.MethodGet, http.MethodPatch, http.MethodDelete}
	}

	for _, method := range methods {
		switch method {
		case http.MethodPost:
			g.POST(path, c.Create)
		case http.MethodGet:
			g.GET(path+"/:id", c.Get)
			g.GET(path, c.List)
		case http.MethodPatch:
			g.PATCH(path+"/:id", c.Update)
		case http.MethodDelete:
			g.DELETE(path+"/:id", c.Delete)
		}
	}
}

// Overlay decodes a JSON object onto dst. Every top-level key in the body
// replaces the field it names, so maps and slices are not merged.
func Overlay(dst interface{}, body []byte) error {
	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return fmt.Errorf("%w: body must be a JSON object", services.ErrInvalidInput)
	}
	resetFields(reflect.ValueOf(dst).Elem(), present)
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	return nil
}

func resetFields(v reflect.Value, present map[string]json.RawMessage) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			resetFields(v.Field(i), present)
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, ok := present[name]; ok && v.Field(i).CanSet() {
			v.Field(i).Set(reflect.Zero(f.Type))
		}
	}
}
