package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

type tableReq struct {
	RestaurantID *uint64 `json:"restaurant_id"`
	TableName    *string `json:"table_name"`
	Description  *string `json:"description"`
}

// ListTables: GET /api/tables[?restaurant_id=]
func (h *RestaurantHandler) ListTables(c echo.Context) error {
	var restaurantID *uint64
	if v := c.QueryParam("restaurant_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant_id"})
		}
		restaurantID = &id
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Tables.List(ctx, restaurantID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, list)
}

// GetTable: GET /api/tables/:id
func (h *RestaurantHandler) GetTable(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, t)
}

// CreateTable: POST /api/tables
func (h *RestaurantHandler) CreateTable(c echo.Context) error {
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RestaurantID == nil || req.TableName == nil || strings.TrimSpace(*req.TableName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id and table_name are required"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	t, err := h.Tables.Create(ctx, model.RestaurantTable{
		RestaurantID: *req.RestaurantID,
		TableName:    strings.TrimSpace(*req.TableName),
		Description:  req.Description,
	})
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusCreated, t)
}

// UpdateTable: PUT /api/tables/:id
func (h *RestaurantHandler) UpdateTable(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	t, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if req.RestaurantID != nil {
		t.RestaurantID = *req.RestaurantID
	}
	if req.TableName != nil {
		if strings.TrimSpace(*req.TableName) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_name must not be empty"})
		}
		t.TableName = strings.TrimSpace(*req.TableName)
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	updated, err := h.Tables.Update(ctx, t)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// DeleteTable: DELETE /api/tables/:id
func (h *RestaurantHandler) DeleteTable(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Tables.Delete(ctx, id); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Table deleted"})
}
