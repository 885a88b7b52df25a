// Package auth holds the authentication context produced by the access
// token verification middleware and consumed by handlers and role checks.
package auth

import "github.com/iliyamo/restaurant-order-service/internal/model"

// Identity is the verified caller of a request.
type Identity struct {
	UserID uint64
	Email  string
	Role   model.Role
}

// HasRole reports whether the identity holds one of roles.  An empty list
// never matches.
func (i Identity) HasRole(roles ...model.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(model.RoleAdmin).
func (i Identity) IsAdmin() bool { return i.Role == model.RoleAdmin }

// Cookie names used by the session responder and read back by the
// authentication middleware.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)
