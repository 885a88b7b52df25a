package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/repository"
)

// OrderItemHandler serves /api/order-items.
type OrderItemHandler struct {
	Items *repository.OrderItemRepo
}

type orderItemBody struct {
	OrderID     *uint64      `json:"order_id"`
	ProductID   *uint64      `json:"product_id"`
	Quantity    *int         `json:"quantity"`
	UnitPrice   *json.Number `json:"unit_price"`
	IsColdDrink *bool        `json:"is_cold_drink"`
}

// List: GET /api/order-items
func (h *OrderItemHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Items.List(ctx)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, list)
}

// Get: GET /api/order-items/:id
func (h *OrderItemHandler) Get(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, it)
}

// Create: POST /api/order-items.  The order total is not recomputed.
func (h *OrderItemHandler) Create(c echo.Context) error {
	var req orderItemBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.OrderID == nil || req.ProductID == nil || req.UnitPrice == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id, product_id, and unit_price are required"})
	}
	it, err := orderItemReq{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	}.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	it.OrderID = *req.OrderID
	if req.IsColdDrink != nil {
		it.IsColdDrink = *req.IsColdDrink
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	created, err := h.Items.Create(ctx, it)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusCreated, created)
}

// Update: PUT /api/order-items/:id
func (h *OrderItemHandler) Update(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	var req orderItemBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if req.OrderID != nil {
		it.OrderID = *req.OrderID
	}
	if req.ProductID != nil {
		it.ProductID = *req.ProductID
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
		}
		it.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		price, valid := parsePrice(*req.UnitPrice)
		if !valid {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unit_price must be a non-negative number"})
		}
		it.UnitPrice = price
	}
	if req.IsColdDrink != nil {
		it.IsColdDrink = *req.IsColdDrink
	}
	updated, err := h.Items.Update(ctx, it)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// Delete: DELETE /api/order-items/:id
func (h *OrderItemHandler) Delete(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Items.Delete(ctx, id); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "OrderItem deleted"})
}
