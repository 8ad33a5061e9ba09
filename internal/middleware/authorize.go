package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

// AuthStatus is the outcome of Authorize.
type AuthStatus int

const (
	// Unauthenticated: no usable credential.  Handlers answer 401.
	Unauthenticated AuthStatus = iota
	// WrongRole: a valid credential for another role.  Handlers answer 403.
	WrongRole
	Authenticated
)

// ErrMissingToken is the AuthResult.Err of a request without a bearer
// token.  Any other Unauthenticated result carries the
// *utils.VerificationError that rejected the token.
var ErrMissingToken = errors.New("missing bearer token")

// AuthResult is returned by Authorize.  Principal is set for
// Authenticated and WrongRole.
type AuthResult struct {
	Status    AuthStatus
	Principal model.Principal
	Err       error
}

// Authorize checks that the request carries a valid token for role.  It
// verifies the bearer credential itself rather than trusting what
// Authenticate left in the context, so handlers that call it are safe
// regardless of how the route is mounted.
func Authorize(c echo.Context, tokens TokenVerifier, role model.Role) AuthResult {
	raw, ok := bearerToken(c.Request())
	if !ok {
		return AuthResult{Status: Unauthenticated, Err: ErrMissingToken}
	}
	claims, err := tokens.Verify(raw)
	if err != nil {
		return AuthResult{Status: Unauthenticated, Err: err}
	}
	p := claims.Principal()
	if p.Role != role {
		return AuthResult{Status: WrongRole, Principal: p}
	}
	return AuthResult{Status: Authenticated, Principal: p}
}
