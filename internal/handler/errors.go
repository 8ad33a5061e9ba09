package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-ticketing/internal/middleware"
	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/service"
)

// requestTimeout bounds the store work of a single request.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// toHTTP maps a service error to the response the client sees.  forbidden
// is the message used for service.ErrForbidden, which differs per
// operation.  Unknown errors are returned unchanged and end up as a
// logged 500 in the error handler.
func toHTTP(err error, forbidden string) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, forbidden)
	case errors.Is(err, service.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	case errors.Is(err, service.ErrInvalidEvent):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid eventId")
	case errors.Is(err, service.ErrStudentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	case errors.Is(err, service.ErrClubNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid clubId")
	case errors.Is(err, service.ErrTicketNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Ticket not found")
	case errors.Is(err, service.ErrAlreadyBooked):
		return echo.NewHTTPError(http.StatusBadRequest, "You already have a ticket for this event")
	case errors.Is(err, service.ErrCapacityExceeded):
		return echo.NewHTTPError(http.StatusBadRequest, "Event is fully booked")
	case errors.Is(err, service.ErrCapacityBelowBooked):
		return echo.NewHTTPError(http.StatusBadRequest, "Capacity cannot be lower than the number of booked tickets")
	case errors.Is(err, service.ErrInvalidCapacity):
		return echo.NewHTTPError(http.StatusBadRequest, "Capacity must be at least 1")
	case errors.Is(err, service.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrRbtTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "RBT number already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	return err
}

// requireRole runs middleware.Authorize and turns a rejection into the
// 401 or 403 response.  wrongRole is the 403 message.
func requireRole(c echo.Context, tokens middleware.TokenVerifier, role model.Role, wrongRole string) (model.Principal, error) {
	res := middleware.Authorize(c, tokens, role)
	switch res.Status {
	case middleware.Authenticated:
		return res.Principal, nil
	case middleware.WrongRole:
		return model.Principal{}, echo.NewHTTPError(http.StatusForbidden, wrongRole)
	}
	if errors.Is(res.Err, middleware.ErrMissingToken) {
		return model.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return model.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "Invalid authentication token")
}
