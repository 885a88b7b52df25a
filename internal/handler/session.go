package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
	"github.com/iliyamo/restaurant-order-service/internal/config"
	"github.com/iliyamo/restaurant-order-service/internal/service"
)

// SessionResponder writes issued tokens to the response.  The access token
// goes into an HttpOnly, SameSite=Strict cookie and is also echoed in the
// JSON body by the caller.  The refresh cookie is only written when
// RefreshCookie is enabled.
type SessionResponder struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshTTL    time.Duration
	RefreshCookie bool
}

// AccessCookieMaxAge is the lifetime of the accessToken cookie.  It does
// not follow ACCESS_TOKEN_TTL.
const AccessCookieMaxAge = 15 * time.Minute

// NewSessionResponder derives cookie settings from the configuration.
// Cookies are Secure everywhere except development.
func NewSessionResponder(cfg config.Config) *SessionResponder {
	return &SessionResponder{
		Secure:        !cfg.IsDevelopment(),
		AccessMaxAge:  AccessCookieMaxAge,
		RefreshTTL:    cfg.RefreshTTL,
		RefreshCookie: cfg.RefreshCookieEnabled,
	}
}

func (s *SessionResponder) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// SetSession sets the session cookies for sess.  Sessions without an
// access token (staff accounts created by an admin) set nothing.
func (s *SessionResponder) SetSession(c echo.Context, sess service.Session) {
	if sess.Access.Token == "" {
		return
	}
	c.SetCookie(s.cookie(auth.AccessCookie, sess.Access.Token, "/", s.AccessMaxAge))
	if s.RefreshCookie && sess.Refresh.Raw != "" {
		c.SetCookie(s.cookie(auth.RefreshCookie, sess.Refresh.Raw, "/api/auth", s.RefreshTTL))
	}
}

// ClearSession expires the session cookies.
func (s *SessionResponder) ClearSession(c echo.Context) {
	access := s.cookie(auth.AccessCookie, "", "/", 0)
	access.MaxAge = -1
	c.SetCookie(access)
	if s.RefreshCookie {
		refresh := s.cookie(auth.RefreshCookie, "", "/api/auth", 0)
		refresh.MaxAge = -1
		c.SetCookie(refresh)
	}
}
