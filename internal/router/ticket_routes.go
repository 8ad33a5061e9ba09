package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-ticketing/internal/handler"
)

// RegisterTickets registers booking, cancellation and attendee routes.
// Role checks happen in the handlers through middleware.Authorize.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler) {
	g := e.Group("/tickets")
	g.POST("/book", h.Book)
	g.GET("/my-tickets", h.Mine)
	g.DELETE("/:ticketId", h.Cancel)
	g.GET("/event/:eventId/attendees", h.Attendees)
	g.GET("/export/:eventId", h.Export)
}
