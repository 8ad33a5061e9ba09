package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/utils"
)

// TokenVerifier is satisfied by *utils.TokenService.
type TokenVerifier interface {
	Verify(raw string) (*utils.TokenClaims, error)
}

// PrincipalLookup confirms a verified subject still exists.  It is
// satisfied by *service.AccountService.
type PrincipalLookup interface {
	PrincipalExists(ctx context.Context, p model.Principal) (bool, error)
}

// Authenticate decodes an optional bearer token.  When the token
// verifies and its subject exists in the store for the claimed role,
// the principal is attached to the context.  Every failure leaves the
// request anonymous; this middleware never rejects.  Route-level
// decisions belong to Enforce and Authorize.
func Authenticate(tokens TokenVerifier, lookup PrincipalLookup, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return next(c)
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				log.Debug("bearer token ignored", zap.Error(err), zap.String("path", c.Path()))
				return next(c)
			}

			p := claims.Principal()
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			exists, err := lookup.PrincipalExists(ctx, p)
			cancel()
			switch {
			case err != nil:
				log.Warn("principal lookup failed", zap.Error(err), zap.String("subject", p.ID))
			case !exists:
				log.Debug("token subject not found", zap.String("subject", p.ID), zap.String("role", string(p.Role)))
			default:
				SetPrincipal(c, p)
			}
			return next(c)
		}
	}
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(auth[len(prefix):])
	return raw, raw != ""
}
