package middleware

// identity.go stores the verified caller in the Echo context and exposes
// it to handlers and to the rate limiter's key builder.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
)

const identityKey = "identity"

// SetIdentity attaches ident to the request context.
func SetIdentity(c echo.Context, ident auth.Identity) { c.Set(identityKey, ident) }

// CurrentIdentity returns the caller set by Authenticate or OptionalAuth.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	ident, ok := c.Get(identityKey).(auth.Identity)
	return ident, ok
}

// currentUserID is the caller's id as a string, or "anon".
func currentUserID(c echo.Context) string {
	if ident, ok := CurrentIdentity(c); ok && ident.UserID != 0 {
		return strconv.FormatUint(ident.UserID, 10)
	}
	return "anon"
}
