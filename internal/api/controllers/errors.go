package controllers

import (
	"errors"
	"net/http"

	"cybersite/internal/api/validator"
	"cybersite/internal/services"
	console "cybersite/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

var log = console.New("CONTROLLERS")

var statusBySentinel = []struct {
	err  error
	code int
}{
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrConflict, http.StatusConflict},
	{services.ErrCampaignNotDraft, http.StatusConflict},
	{services.ErrCampaignLocked, http.StatusConflict},
	{services.ErrInvalidInput, http.StatusBadRequest},
	{services.ErrInvalidTransition, http.StatusBadRequest},
	{services.ErrNoSubscribers, http.StatusBadRequest},
	{services.ErrNothingEnqueued, http.StatusServiceUnavailable},
	{services.ErrUnauthorized, http.StatusUnauthorized},
	{services.ErrForbidden, http.StatusForbidden},
}

// ServiceError maps a service error onto the HTTP error returned to the client.
// Validation errors pass through so the error handler can list the fields.
func ServiceError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return echo.NewHTTPError(s.code, err.Error())
		}
	}
	log.Warn("Unhandled service error: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}
