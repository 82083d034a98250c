package handlers

import (
	"net/http"

	"cybersite/internal/api/controllers"
	"cybersite/internal/api/middleware"
	"cybersite/internal/services"
	"cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

const maxProfileImageSize = 5 << 20

type AuthHandler struct {
	sessions Sessions
	profiles Profiles
	log      *logger.Logger
}

func NewAuthHandler(sessions Sessions, profiles Profiles) *AuthHandler {
	return &AuthHandler{sessions: sessions, profiles: profiles, log: logger.New("AuthHandler")}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// Login checks the credentials and opens a session.
// @Summary Login admin
// @Description Authenticate an admin and return access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} services.Session
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password,
		c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return controllers.ServiceError(err)
	}

	h.log.Info("Admin %s signed in", session.User.Email)
	return c.JSON(http.StatusOK, session)
}

// RefreshToken swaps a refresh token for a new access token.
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} services.Session
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Router /api/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.sessions.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, session)
}

// Logout revokes the current session.
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Success 204 "No content"
// @Router /api/admin/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Logout(c.Request().Context(), middleware.GetToken(c)); err != nil {
		return controllers.ServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetMe returns the signed-in admin with their scopes.
// @Summary Current admin
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/me [get]
func (h *AuthHandler) GetMe(c echo.Context) error {
	user, err := h.sessions.Me(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":   user,
		"scopes": middleware.GetScopes(c),
	})
}

// UpdateProfile changes the admin's name or email.
// @Summary Update profile
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.ProfileUpdate true "Profile fields"
// @Success 200 {object} models.User
// @Failure 409 {object} map[string]string "Email already in use"
// @Router /api/admin/profile [patch]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req services.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.profiles.Update(c.Request().Context(), middleware.GetUserID(c), req)
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UploadProfileImage replaces the admin's avatar.
// @Summary Upload profile image
// @Tags profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 200 {object} models.User
// @Router /api/admin/profile [post]
func (h *AuthHandler) UploadProfileImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No image provided")
	}
	if file.Size > maxProfileImageSize {
		return echo.NewHTTPError(http.StatusBadRequest, "image must be at most 5 MB")
	}
	data, err := readPart(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read file")
	}
	contentType := sniffContentType(data)
	if !isImage(contentType) {
		return echo.NewHTTPError(http.StatusBadRequest, "file must be an image")
	}

	user, err := h.profiles.SetImage(c.Request().Context(), middleware.GetUserID(c), data, file.Filename, contentType)
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// RemoveProfileImage clears the admin's avatar.
// @Summary Remove profile image
// @Tags profile
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /api/admin/profile [delete]
func (h *AuthHandler) RemoveProfileImage(c echo.Context) error {
	user, err := h.profiles.RemoveImage(c.Request().Context(), middleware.GetUserID(c))
	if err != nil {
		return controllers.ServiceError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword sets a new password and signs out every other session.
// @Summary Change password
// @Tags profile
// @Security BearerAuth
// @Accept json
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Validation error"
// @Router /api/admin/profile/password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	userID := middleware.GetUserID(c)
	if err := h.profiles.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		return controllers.ServiceError(err)
	}
	if err := h.sessions.RevokeAll(ctx, userID, middleware.GetToken(c)); err != nil {
		h.log.Warn("Failed to revoke other sessions of %s: %v", userID, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}
