package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
	"github.com/iliyamo/restaurant-order-service/internal/middleware"
	"github.com/iliyamo/restaurant-order-service/internal/model"
	"github.com/iliyamo/restaurant-order-service/internal/repository"
	"github.com/iliyamo/restaurant-order-service/internal/service"
)

// UserStore is the user persistence used by the users API.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id uint64) error
}

// UserHandler serves /api/users.
type UserHandler struct {
	Users   UserStore
	Auth    Authenticator
	Session *SessionResponder
}

type createUserReq struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	Role         model.Role `json:"role"`
	RestaurantID *uint64    `json:"restaurant_id"`
}

type updateUserReq struct {
	Name         *string     `json:"name"`
	Email        *string     `json:"email"`
	Role         *model.Role `json:"role"`
	RestaurantID *uint64     `json:"restaurant_id"`
}

// Create: POST /api/users.  Clients are signed in right away; admin and
// cashier accounts require an admin caller.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var caller *auth.Identity
	if ident, ok := middleware.CurrentIdentity(c); ok {
		caller = &ident
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	s, err := h.Auth.Register(ctx, service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		RestaurantID: req.RestaurantID,
	}, caller)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown restaurant_id"})
		}
		return authError(c, err)
	}
	h.Session.SetSession(c, s)
	resp := echo.Map{"success": true, "user": toUserPart(s.User)}
	if s.Access.Token != "" {
		resp["token"] = s.Access.Token
		resp["refreshToken"] = s.Refresh.Raw
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) listRole(c echo.Context, role model.Role) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	users, err := h.Users.ListByRole(ctx, role)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, users)
}

// ListCashiers: GET /api/users/cashiers
func (h *UserHandler) ListCashiers(c echo.Context) error { return h.listRole(c, model.RoleCashier) }

// ListClients: GET /api/users/clients
func (h *UserHandler) ListClients(c echo.Context) error { return h.listRole(c, model.RoleClient) }

// Get: GET /api/users/:id
func (h *UserHandler) Get(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, u)
}

// Update: PUT /api/users/:id applies the provided fields.
func (h *UserHandler) Update(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must not be empty"})
		}
		u.Email = *req.Email
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role provided"})
		}
		u.Role = *req.Role
	}
	if req.RestaurantID != nil {
		u.RestaurantID = req.RestaurantID
	}
	u.PasswordHash = nil // keep the stored hash

	updated, err := h.Users.Update(ctx, u)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// Delete: DELETE /api/users/:id
func (h *UserHandler) Delete(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "User deleted"})
}
