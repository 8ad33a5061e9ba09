package middleware

import "github.com/iliyamo/campus-ticketing/internal/model"

// AccessLevel is the coarse gate a route sits behind.
type AccessLevel int

const (
	LevelPublic AccessLevel = iota
	LevelAuthenticated
	LevelRole
)

// Access is one entry of the route policy.  Role is only consulted for
// LevelRole.
type Access struct {
	Level AccessLevel
	Role  model.Role
}

// Public admits everyone.
func Public() Access { return Access{Level: LevelPublic} }

// AnyRole admits any authenticated principal.
func AnyRole() Access { return Access{Level: LevelAuthenticated} }

// RequireRole admits principals of role r only.
func RequireRole(r model.Role) Access { return Access{Level: LevelRole, Role: r} }

// admits reports whether p (nil for anonymous) may pass.  authed is false
// when the rejection is for lack of a principal rather than its role.
func (a Access) admits(p *model.Principal) (ok bool, authed bool) {
	switch a.Level {
	case LevelPublic:
		return true, p != nil
	case LevelAuthenticated:
		return p != nil, p != nil
	default:
		if p == nil {
			return false, false
		}
		return p.Role == a.Role, true
	}
}
