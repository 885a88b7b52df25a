package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
)

// Identifier verifies a raw access token and resolves it to the caller.
type Identifier interface {
	Identify(ctx context.Context, rawAccess string) (auth.Identity, error)
}

// accessToken reads the access token from the Authorization header first
// and falls back to the accessToken cookie.
func accessToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(auth.AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

// Authenticate rejects requests without a valid access token.  On success
// the caller's auth.Identity is stored in the context for handlers and
// RequireRole.
func Authenticate(id Identifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := accessToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing access token"})
			}
			ident, err := id.Identify(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			SetIdentity(c, ident)
			return next(c)
		}
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through.  An invalid token is treated as anonymous.
func OptionalAuth(id Identifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := accessToken(c); raw != "" {
				if ident, err := id.Identify(c.Request().Context(), raw); err == nil {
					SetIdentity(c, ident)
				}
			}
			return next(c)
		}
	}
}
