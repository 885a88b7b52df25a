package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/repository"
)

// RestaurantHandler serves /api/restaurants and /api/tables.
type RestaurantHandler struct {
	Restaurants *repository.RestaurantRepo
	Tables      *repository.TableRepo
}

type restaurantReq struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// ListRestaurants: GET /api/restaurants
func (h *RestaurantHandler) ListRestaurants(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Restaurants.List(ctx)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, list)
}

// GetRestaurant: GET /api/restaurants/:id
func (h *RestaurantHandler) GetRestaurant(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	r, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, r)
}

// CreateRestaurant: POST /api/restaurants
func (h *RestaurantHandler) CreateRestaurant(c echo.Context) error {
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	r, err := h.Restaurants.Create(ctx, strings.TrimSpace(*req.Name), req.Location)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusCreated, r)
}

// UpdateRestaurant: PUT /api/restaurants/:id
func (h *RestaurantHandler) UpdateRestaurant(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	r, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
		r.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		r.Location = req.Location
	}
	updated, err := h.Restaurants.Update(ctx, r)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// DeleteRestaurant: DELETE /api/restaurants/:id
func (h *RestaurantHandler) DeleteRestaurant(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Restaurants.Delete(ctx, id); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Restaurant deleted"})
}
