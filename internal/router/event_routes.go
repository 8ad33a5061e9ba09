package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-ticketing/internal/handler"
	"github.com/iliyamo/campus-ticketing/internal/middleware"
)

// RegisterEvents registers the public catalogue, cached in Redis, and
// the club-only mutations, each of which purges that cache on success.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, cache *middleware.ResponseCache) {
	g := e.Group("/events")
	g.GET("", h.List, cache.Cache())
	g.GET("/:id", h.Get, cache.Cache())

	purge := cache.PurgeOnWrite()
	g.POST("/create", h.Create, purge)
	g.PUT("/:id", h.Update, purge)
	g.DELETE("/:id", h.Delete, purge)

	e.GET("/clubs/me/events", h.Mine)
}
