package handlers

import (
	"context"
	"net/http"

	"cybersite/internal/api/controllers"
	"cybersite/internal/models"
	"cybersite/internal/services"

	"github.com/labstack/echo/v4"
)

// UserCreator adds admin accounts.
type UserCreator interface {
	CreateUser(ctx context.Context, in services.NewUser) (*models.User, error)
}

type UserHandler struct {
	users UserCreator
}

func NewUserHandler(users UserCreator) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUser adds an admin account with a hashed password.
// @Summary Create admin user
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.NewUser true "New user"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Email already in use"
// @Router /api/admin/users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req services.NewUser
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusCreated, user)
}
