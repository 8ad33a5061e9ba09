// Package router assembles the echo server: middleware chain, routes and
// access policy.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/campus-ticketing/internal/config"
	"github.com/iliyamo/campus-ticketing/internal/handler"
	"github.com/iliyamo/campus-ticketing/internal/logger"
	"github.com/iliyamo/campus-ticketing/internal/middleware"
	"github.com/iliyamo/campus-ticketing/internal/service"
	"github.com/iliyamo/campus-ticketing/internal/utils"
)

// Deps is everything the HTTP layer needs.  Redis and DB may be nil; the
// cache and rate limiter then pass requests straight through and the
// health check skips the database ping.
type Deps struct {
	Accounts *service.AccountService
	Booking  *service.BookingService
	Tokens   *utils.TokenService
	Log      *zap.Logger

	DB          handler.Pinger
	Redis       *redis.Client
	Cache       config.CacheConfig
	RateLimit   config.RateLimitConfig
	CORSOrigins []string
}

// New builds the echo instance.  Middleware order: recover, request log,
// CORS, authenticate, policy, rate limit; echo runs e.Use middleware
// after routing, so the policy sees the matched route pattern.
func New(d Deps) *echo.Echo {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger.WithComponent(log, "http"))

	e.Use(echoMw.Recover())
	e.Use(middleware.RequestLogger(logger.WithComponent(log, "access")))
	if len(d.CORSOrigins) > 0 {
		e.Use(echoMw.CORSWithConfig(echoMw.CORSConfig{
			AllowOrigins:  d.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType},
			ExposeHeaders: []string{echo.HeaderContentDisposition},
		}))
	}
	authLog := logger.WithComponent(log, "auth")
	e.Use(middleware.Authenticate(d.Tokens, d.Accounts, authLog))
	e.Use(middleware.Enforce(AccessPolicy(), authLog))
	e.Use(middleware.RateLimit(d.RateLimit, d.Redis, logger.WithComponent(log, "ratelimit")))

	cache := middleware.NewResponseCache(d.Cache, d.Redis, logger.WithComponent(log, "cache"))

	RegisterRoutes(e, d.DB)
	RegisterAccounts(e, handler.NewAccountHandler(d.Accounts))
	RegisterEvents(e, handler.NewEventHandler(d.Booking, d.Tokens), cache)
	RegisterTickets(e, handler.NewTicketHandler(d.Booking, d.Tokens))
	return e
}

// RegisterRoutes registers the unauthenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAccounts registers registration, login and profile routes.
func RegisterAccounts(e *echo.Echo, a *handler.AccountHandler) {
	clubs := e.Group("/clubs")
	clubs.POST("/register", a.RegisterClub)
	clubs.POST("/login", a.LoginClub)

	students := e.Group("/students")
	students.POST("/register", a.RegisterStudent)
	students.POST("/login", a.LoginStudent)

	e.GET("/me", a.Me)
}
