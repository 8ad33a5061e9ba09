package handler

import (
	"bytes"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-ticketing/internal/middleware"
	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/service"
)

// TicketHandler serves booking, cancellation and attendee listings.
type TicketHandler struct {
	booking *service.BookingService
	tokens  middleware.TokenVerifier
}

func NewTicketHandler(booking *service.BookingService, tokens middleware.TokenVerifier) *TicketHandler {
	return &TicketHandler{booking: booking, tokens: tokens}
}

type bookReq struct {
	EventID string `json:"eventId" validate:"required"`
}

// Book: POST /tickets/book
func (h *TicketHandler) Book(c echo.Context) error {
	p, err := requireRole(c, h.tokens, model.RoleStudent, "Only students can book tickets")
	if err != nil {
		return err
	}
	var req bookReq
	if err := bindValid(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	t, err := h.booking.BookTicket(ctx, p.ID, req.EventID)
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, t)
}

// Mine: GET /tickets/my-tickets
func (h *TicketHandler) Mine(c echo.Context) error {
	p, err := requireRole(c, h.tokens, model.RoleStudent, "Only students can view their tickets")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	tickets, err := h.booking.ListMyTickets(ctx, p.ID)
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, tickets)
}

// Cancel: DELETE /tickets/:ticketId
func (h *TicketHandler) Cancel(c echo.Context) error {
	p, err := requireRole(c, h.tokens, model.RoleStudent, "Only students can cancel tickets")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.booking.CancelTicket(ctx, p.ID, c.Param("ticketId")); err != nil {
		return toHTTP(err, "You don't have permission to cancel this ticket")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Ticket cancelled successfully"})
}

// Attendees: GET /tickets/event/:eventId/attendees
func (h *TicketHandler) Attendees(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	tickets, err := h.booking.ListAttendees(ctx, c.Param("eventId"))
	if err != nil {
		return toHTTP(err, "")
	}
	return c.JSON(http.StatusOK, tickets)
}

// Export: GET /tickets/export/:eventId downloads the attendee list as
// CSV.  The file is rendered fully before anything is written, so a
// render failure is still a clean 500.
func (h *TicketHandler) Export(c echo.Context) error {
	if _, err := requireRole(c, h.tokens, model.RoleClub, "Only clubs can export attendees"); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	export, err := h.booking.ExportAttendees(ctx, c.Param("eventId"))
	if err != nil {
		return toHTTP(err, "")
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename()}))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
