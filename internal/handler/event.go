package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-ticketing/internal/middleware"
	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/service"
)

// EventHandler serves the event catalogue and club event management.
type EventHandler struct {
	booking *service.BookingService
	tokens  middleware.TokenVerifier
}

func NewEventHandler(booking *service.BookingService, tokens middleware.TokenVerifier) *EventHandler {
	return &EventHandler{booking: booking, tokens: tokens}
}

const onlyClubs = "Only clubs can manage events"

// eventReq is the body of create and update.  Capacity below 1 fails
// validation.
type eventReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Venue       string `json:"venue" validate:"required"`
	Capacity    int    `json:"capacity" validate:"min=1"`
}

func (r eventReq) input() service.EventInput {
	return service.EventInput{
		Name: r.Name, Description: r.Description, Date: r.Date, Time: r.Time, Venue: r.Venue, Capacity: r.Capacity,
	}
}

// List: GET /events
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	events, err := h.booking.ListEvents(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// Get: GET /events/:id
func (h *EventHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	ev, err := h.booking.GetEvent(ctx, c.Param("id"))
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, ev)
}

// Create: POST /events/create.  The owner is always the calling club.
func (h *EventHandler) Create(c echo.Context) error {
	p, err := requireRole(c, h.tokens, model.RoleClub, onlyClubs)
	if err != nil {
		return err
	}
	var req eventReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ev, err := h.booking.CreateEvent(ctx, p.ID, req.input())
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, ev)
}

// Update: PUT /events/:id
func (h *EventHandler) Update(c echo.Context) error {
	p, err := requireRole(c, h.tokens, model.RoleClub, onlyClubs)
	if err != nil {
		return err
	}
	var req eventReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ev, err := h.booking.UpdateEvent(ctx, c.Param("id"), p.ID, req.input())
	if err != nil {
		return toHTTP(err, "You don't have permission to update this event")
	}
	return c.JSON(http.StatusOK, ev)
}

// Delete: DELETE /events/:id
func (h *EventHandler) Delete(c echo.Context) error {
	p, err := requireRole(c, h.tokens, model.RoleClub, onlyClubs)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.booking.DeleteEvent(ctx, c.Param("id"), p.ID); err != nil {
		return toHTTP(err, "You don't have permission to delete this event")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Event deleted successfully"})
}

// Mine: GET /clubs/me/events
func (h *EventHandler) Mine(c echo.Context) error {
	p, err := requireRole(c, h.tokens, model.RoleClub, onlyClubs)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	events, err := h.booking.ListClubEvents(ctx, p.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}
