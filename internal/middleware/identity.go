package middleware

// identity.go holds the helpers that move the authenticated principal in
// and out of the echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

const principalKey = "principal"

// SetPrincipal attaches p to the request.
func SetPrincipal(c echo.Context, p model.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal placed by Authenticate, if any.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok && p.ID != ""
}

// subjectKey names the caller for rate limiting: "<role>:<id>" when
// authenticated, "anon" otherwise.
func subjectKey(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return string(p.Role) + ":" + p.ID
	}
	return "anon"
}
