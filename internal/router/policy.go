package router

import (
	"net/http"

	"github.com/iliyamo/campus-ticketing/internal/middleware"
	"github.com/iliyamo/campus-ticketing/internal/model"
)

// AccessPolicy is the route table enforced ahead of every handler.
// Routes not listed are public.  Booking and my-tickets stay public here
// since their handlers authorize the student role themselves and answer
// with their own messages.
func AccessPolicy() middleware.Policy {
	club := middleware.RequireRole(model.RoleClub)
	anyRole := middleware.AnyRole()
	public := middleware.Public()
	key := middleware.RouteKey

	return middleware.Policy{
		key(http.MethodPost, "/clubs/register"):    public,
		key(http.MethodPost, "/clubs/login"):       public,
		key(http.MethodPost, "/students/register"): public,
		key(http.MethodPost, "/students/login"):    public,
		key(http.MethodGet, "/healthz"):            public,

		key(http.MethodGet, "/events"):     public,
		key(http.MethodGet, "/events/:id"): public,

		key(http.MethodPost, "/events/create"):          club,
		key(http.MethodPut, "/events/:id"):              club,
		key(http.MethodDelete, "/events/:id"):           club,
		key(http.MethodGet, "/clubs/me/events"):         club,
		key(http.MethodGet, "/tickets/export/:eventId"): club,

		key(http.MethodGet, "/me"):                   anyRole,
		key(http.MethodDelete, "/tickets/:ticketId"): anyRole,

		key(http.MethodPost, "/tickets/book"):                    public,
		key(http.MethodGet, "/tickets/my-tickets"):               public,
		key(http.MethodGet, "/tickets/event/:eventId/attendees"): public,
	}
}
