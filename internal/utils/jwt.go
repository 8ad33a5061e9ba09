package utils // package utils provides token signing and password hashing helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

// AccessToken is a signed JWT together with its expiry.  Clients send
// Token in the Authorization header as "Bearer <token>".
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// DisplayClaims are the role-specific profile fields copied into a
// token.  Clubs carry ClubName and Email; students carry Name, RbtNumber
// and Email.  They are informational only and never used for access
// decisions.
type DisplayClaims struct {
	ClubName  string `json:"clubName,omitempty"`
	Name      string `json:"name,omitempty"`
	RbtNumber string `json:"rbtNumber,omitempty"`
	Email     string `json:"email,omitempty"`
}

// TokenClaims is the full claim set of an access token.
type TokenClaims struct {
	Role model.Role `json:"role"`
	DisplayClaims
	jwt.RegisteredClaims
}

// Principal returns the identity the claims assert.
func (c *TokenClaims) Principal() model.Principal {
	return model.Principal{ID: c.Subject, Role: c.Role}
}

// VerificationKind classifies why a token was rejected.
type VerificationKind int

const (
	Malformed VerificationKind = iota + 1
	BadSignature
	Expired
)

func (k VerificationKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case BadSignature:
		return "bad signature"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// VerificationError is returned by Verify for every rejected token.
type VerificationError struct {
	Kind VerificationKind
	Err  error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// TokenService issues and verifies HS256 access tokens with a single
// process-wide key.
type TokenService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenService returns a service signing with secret.  Tokens expire
// ttl after issue.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenService{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// TTL reports how long issued tokens stay valid.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for p.  Timestamps are truncated to whole seconds,
// so two calls within the same second with the same inputs produce the
// same token.
func (s *TokenService) Issue(p model.Principal, display DisplayClaims) (AccessToken, error) {
	if p.ID == "" || !p.Role.Valid() {
		return AccessToken{}, errors.New("principal needs an id and a known role")
	}
	iat := s.now().UTC().Truncate(time.Second)
	exp := iat.Add(s.ttl)
	claims := TokenClaims{
		Role:          p.Role,
		DisplayClaims: display,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks raw's signature and expiry and returns its claims.
// Every failure is a *VerificationError.
func (s *TokenService) Verify(raw string) (*TokenClaims, error) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, &VerificationError{Kind: Malformed, Err: errors.New("missing subject or unknown role")}
	}
	return &claims, nil
}

func classify(err error) *VerificationError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &VerificationError{Kind: Expired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &VerificationError{Kind: BadSignature, Err: err}
	default:
		return &VerificationError{Kind: Malformed, Err: err}
	}
}
