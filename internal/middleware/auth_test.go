package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
	"github.com/iliyamo/restaurant-order-service/internal/model"
)

type stubIdentifier map[string]auth.Identity

func (s stubIdentifier) Identify(_ context.Context, raw string) (auth.Identity, error) {
	if id, ok := s[raw]; ok {
		return id, nil
	}
	return auth.Identity{}, errors.New("invalid token")
}

var tokens = stubIdentifier{
	"admin-token":  {UserID: 1, Email: "admin@x.com", Role: model.RoleAdmin},
	"client-token": {UserID: 2, Email: "client@x.com", Role: model.RoleClient},
}

func whoAmI(c echo.Context) error {
	ident, ok := CurrentIdentity(c)
	if !ok {
		return c.String(http.StatusOK, "anon")
	}
	return c.String(http.StatusOK, ident.Email)
}

func serve(mw []echo.MiddlewareFunc, setup func(*http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/", whoAmI, mw...)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*http.Request)
		wantStatus int
		wantBody   string
	}{
		{"no token", nil, http.StatusUnauthorized, ""},
		{"bad token", bearer("nope"), http.StatusUnauthorized, ""},
		{"bearer", bearer("client-token"), http.StatusOK, "client@x.com"},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "admin-token"})
		}, http.StatusOK, "admin@x.com"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve([]echo.MiddlewareFunc{Authenticate(tokens)}, tc.setup)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantBody != "" && rec.Body.String() != tc.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	if rec := serve([]echo.MiddlewareFunc{OptionalAuth(tokens)}, nil); rec.Body.String() != "anon" {
		t.Errorf("anonymous: body = %q", rec.Body.String())
	}
	if rec := serve([]echo.MiddlewareFunc{OptionalAuth(tokens)}, bearer("garbage")); rec.Code != http.StatusOK || rec.Body.String() != "anon" {
		t.Errorf("invalid token: status=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec := serve([]echo.MiddlewareFunc{OptionalAuth(tokens)}, bearer("client-token")); rec.Body.String() != "client@x.com" {
		t.Errorf("valid token: body = %q", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*http.Request)
		wantStatus int
	}{
		{"admin allowed", bearer("admin-token"), http.StatusOK},
		{"client forbidden", bearer("client-token"), http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mw := []echo.MiddlewareFunc{OptionalAuth(tokens), RequireRole(model.RoleAdmin, model.RoleCashier)}
			if rec := serve(mw, tc.setup); rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
