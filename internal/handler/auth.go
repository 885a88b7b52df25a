package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
	"github.com/iliyamo/restaurant-order-service/internal/middleware"
	"github.com/iliyamo/restaurant-order-service/internal/model"
	"github.com/iliyamo/restaurant-order-service/internal/service"
	"github.com/iliyamo/restaurant-order-service/internal/utils"
)

// Authenticator is the session logic behind the auth endpoints.
type Authenticator interface {
	Login(ctx context.Context, in service.LoginInput) (service.Session, error)
	OAuthLogin(ctx context.Context, p model.OAuthProfile, tokens model.ProviderTokens) (service.Session, error)
	Refresh(ctx context.Context, raw string) (service.Session, error)
	Logout(ctx context.Context, raw string, caller *auth.Identity) error
	Register(ctx context.Context, in service.RegisterInput, caller *auth.Identity) (service.Session, error)
}

// OAuthProvider performs the consent redirect and code exchange.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (model.OAuthProfile, model.ProviderTokens, error)
}

// UserReader loads a single user.
type UserReader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

// AuthHandler bundles dependencies for auth endpoints.  Google is nil when
// Google sign-in is not configured.
type AuthHandler struct {
	Svc         Authenticator
	Users       UserReader
	Google      OAuthProvider
	Session     *SessionResponder
	StateSecret string
	Log         *slog.Logger
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID    uint64     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type sessionResp struct {
	Success      bool      `json:"success"`
	User         userPart  `json:"user"`
	Token        string    `json:"token,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitzero"`
	IsNewUser    *bool     `json:"isNewUser,omitempty"`
}

func newSessionResp(s service.Session, withNewFlag bool) sessionResp {
	r := sessionResp{
		Success:      true,
		User:         toUserPart(s.User),
		Token:        s.Access.Token,
		RefreshToken: s.Refresh.Raw,
		ExpiresAt:    s.Access.Exp,
	}
	if withNewFlag {
		isNew := s.IsNewUser
		r.IsNewUser = &isNew
	}
	return r
}

// authError maps service failures to responses.  Unknown errors go to the
// HTTP error handler as an opaque 500.
func authError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrMissingField):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "required fields are missing"})
	case errors.Is(err, service.ErrInvalidPassword):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at most 72 bytes"})
	case errors.Is(err, service.ErrInvalidRole):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role provided"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrUnlinkedOAuthAccount):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no account is registered for this email; sign up first"})
	case errors.Is(err, service.ErrOrphanedOAuthAccount):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "the linked account could not be found"})
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only an admin can create an admin or cashier"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
	}
	return err
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	s, err := h.Svc.Login(ctx, service.LoginInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		return authError(c, err)
	}
	h.Session.SetSession(c, s)
	return c.JSON(http.StatusOK, newSessionResp(s, true))
}

// GoogleStart: GET /auth/google redirects to the consent page with a
// signed state whose nonce is pinned in a short-lived cookie.
func (h *AuthHandler) GoogleStart(c echo.Context) error {
	if h.Google == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "google sign-in is not configured"})
	}
	state, nonce, err := utils.NewStateToken(h.StateSecret, stateTTL)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    nonce,
		Path:     "/auth/google",
		MaxAge:   int(stateTTL / time.Second),
		HttpOnly: true,
		Secure:   h.Session.Secure,
		SameSite: http.SameSiteLaxMode, // sent on the top-level redirect back from Google
	})
	return c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

// GoogleCallback: GET /auth/google/callback
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if h.Google == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "google sign-in is not configured"})
	}
	if c.QueryParam("error") != "" {
		return c.Redirect(http.StatusFound, "/auth/failure")
	}

	nonce, err := utils.VerifyStateToken(h.StateSecret, c.QueryParam("state"))
	ck, ckErr := c.Cookie(stateCookie)
	if err != nil || ckErr != nil || ck.Value != nonce {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid oauth state"})
	}
	c.SetCookie(&http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1, HttpOnly: true, Secure: h.Session.Secure})

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	profile, tokens, err := h.Google.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		h.Log.Warn("google exchange failed", slog.Any("err", err))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "google sign-in failed"})
	}

	s, err := h.Svc.OAuthLogin(ctx, profile, tokens)
	if err != nil {
		return authError(c, err)
	}
	h.Session.SetSession(c, s)
	return c.JSON(http.StatusOK, newSessionResp(s, false))
}

// Failure: GET /auth/failure
func (h *AuthHandler) Failure(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "google authentication failed"})
}

// refreshFromRequest reads the refresh token from the body, then the
// refresh cookie.
func refreshFromRequest(c echo.Context) string {
	var req refreshReq
	_ = c.Bind(&req)
	if req.RefreshToken != "" {
		return req.RefreshToken
	}
	if ck, err := c.Cookie(auth.RefreshCookie); err == nil {
		return ck.Value
	}
	return ""
}

// Refresh: POST /api/auth/refresh rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := refreshFromRequest(c)

	ctx, cancel := requestCtx(c)
	defer cancel()

	s, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		return authError(c, err)
	}
	h.Session.SetSession(c, s)
	return c.JSON(http.StatusOK, newSessionResp(s, false))
}

// Logout: POST /api/auth/logout revokes the presented refresh token, or
// every refresh token of the authenticated caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := refreshFromRequest(c)
	var caller *auth.Identity
	if ident, ok := middleware.CurrentIdentity(c); ok {
		caller = &ident
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Svc.Logout(ctx, raw, caller); err != nil {
		return authError(c, err)
	}
	h.Session.ClearSession(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me: GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.UserID)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}
