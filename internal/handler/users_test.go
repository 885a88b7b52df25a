package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
	"github.com/iliyamo/restaurant-order-service/internal/model"
	"github.com/iliyamo/restaurant-order-service/internal/repository"
	"github.com/iliyamo/restaurant-order-service/internal/service"
)

func TestCreateUser(t *testing.T) {
	staff := service.Session{User: model.User{ID: 3, Name: "Bob", Email: "bob@example.com", Role: model.RoleCashier}}

	tests := []struct {
		name       string
		session    service.Session
		err        error
		wantStatus int
		wantCookie bool
	}{
		{"client signs in", aliceSession(true), nil, http.StatusCreated, true},
		{"staff gets no tokens", staff, nil, http.StatusCreated, false},
		{"staff without admin", service.Session{}, service.ErrForbidden, http.StatusForbidden, false},
		{"duplicate email", service.Session{}, service.ErrConflict, http.StatusConflict, false},
		{"bad role", service.Session{}, service.ErrInvalidRole, http.StatusBadRequest, false},
		{"password too long", service.Session{}, fmt.Errorf("auth.Register: %w", service.ErrInvalidPassword), http.StatusBadRequest, false},
		{"unknown restaurant", service.Session{}, repository.ErrInvalidReference, http.StatusBadRequest, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := &UserHandler{
				Auth:    &stubAuth{session: tc.session, err: tc.err},
				Session: &SessionResponder{AccessMaxAge: time.Minute},
			}
			c, rec := postJSON(echo.New(), "/api/users", `{"name":"x","email":"x@example.com","password":"pw123456"}`)
			if err := h.Create(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			if got := findCookie(rec, auth.AccessCookie) != nil; got != tc.wantCookie {
				t.Errorf("cookie set = %v, want %v", got, tc.wantCookie)
			}
		})
	}
}
