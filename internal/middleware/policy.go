package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

// Policy maps "METHOD /route/:param" to the access required.  Routes
// absent from the policy are public.
type Policy map[string]Access

// RouteKey builds a Policy key from a method and an echo route pattern.
func RouteKey(method, path string) string { return method + " " + path }

// Lookup returns the access for a route, defaulting to Public.
func (p Policy) Lookup(method, path string) Access {
	if a, ok := p[RouteKey(method, path)]; ok {
		return a
	}
	return Public()
}

// Enforce rejects requests the policy does not admit: 401 with
// "Authentication required" when no principal is attached, 403
// "Forbidden" when the principal has the wrong role.  It must run after
// Authenticate and after routing, so c.Path() holds the route pattern.
func Enforce(policy Policy, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access := policy.Lookup(c.Request().Method, c.Path())
			var principal *model.Principal
			if p, ok := PrincipalFrom(c); ok {
				principal = &p
			}
			ok, authed := access.admits(principal)
			if ok {
				return next(c)
			}
			if !authed {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required"})
			}
			log.Info("route denied by policy",
				zap.String("route", RouteKey(c.Request().Method, c.Path())),
				zap.String("role", string(principal.Role)))
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Forbidden"})
		}
	}
}
