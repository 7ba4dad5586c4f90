package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/service"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

// writeServiceError maps service sentinels to status codes. Anything
// unrecognised is logged and reported as a generic 500 so driver and
// transport details never reach the client.
func writeServiceError(c echo.Context, log *zap.SugaredLogger, err error, fallback string) error {
	var partial *service.PartialFailureError
	switch {
	case errors.As(err, &partial) && partial.Trip != nil:
		return c.JSON(http.StatusMultiStatus, util.Data("trip", partial.Trip).
			WithWarning("trip saved but collaborators could not be updated"))
	case service.IsValidation(err):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrTripNotFound):
		return c.JSON(http.StatusNotFound, util.Error("trip not found"))
	case errors.Is(err, service.ErrInvitationNotFound):
		return c.JSON(http.StatusNotFound, util.Error("invitation not found or expired"))
	case errors.Is(err, service.ErrTripForbidden):
		return c.JSON(http.StatusForbidden, util.Error("you do not have access to this trip"))
	case errors.Is(err, service.ErrRemoteUnavailable):
		return c.JSON(http.StatusServiceUnavailable, util.Error("trip storage is temporarily unavailable"))
	default:
		log.Errorw(fallback, "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, util.Error(fallback))
	}
}
