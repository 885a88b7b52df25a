package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/middleware"
	"github.com/iliyamo/restaurant-order-service/internal/model"
	"github.com/iliyamo/restaurant-order-service/internal/repository"
)

// OrderStore is the order persistence used by the orders API.
type OrderStore interface {
	CreateWithItems(ctx context.Context, o model.Order, items []model.OrderItem) (model.Order, error)
	GetByID(ctx context.Context, id uint64) (model.Order, error)
	List(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Order, error)
	Update(ctx context.Context, o model.Order) (model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (model.Order, error)
	Delete(ctx context.Context, id uint64) error
}

// TableLookup resolves the restaurant of a table.
type TableLookup interface {
	GetByID(ctx context.Context, id uint64) (model.RestaurantTable, error)
}

// OrderPublisher announces committed orders.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, o model.Order) error
}

// OrderHandler serves /api/orders.
type OrderHandler struct {
	Orders OrderStore
	Tables TableLookup
	Events OrderPublisher // nil disables publishing
	Log    *slog.Logger
}

type orderItemReq struct {
	ProductID   *uint64      `json:"product_id"`
	Quantity    *int         `json:"quantity"`
	UnitPrice   *json.Number `json:"unit_price"`
	IsColdDrink bool         `json:"is_cold_drink"`
}

type createOrderReq struct {
	RestaurantID *uint64        `json:"restaurant_id"`
	TableID      *uint64        `json:"table_id"`
	UserID       *uint64        `json:"user_id"`
	TotalPrice   *json.Number   `json:"total_price"`
	Items        []orderItemReq `json:"items"`
}

type updateOrderReq struct {
	RestaurantID *uint64            `json:"restaurant_id"`
	TableID      *uint64            `json:"table_id"`
	UserID       *uint64            `json:"user_id"`
	TotalPrice   *json.Number       `json:"total_price"`
	Status       *model.OrderStatus `json:"status"`
}

const publishTimeout = 10 * time.Second

var errInvalidItem = errors.New("each item must have a valid product_id, unit_price, and quantity")

func (r orderItemReq) toModel() (model.OrderItem, error) {
	if r.ProductID == nil || *r.ProductID == 0 || r.UnitPrice == nil {
		return model.OrderItem{}, errInvalidItem
	}
	qty := 1
	if r.Quantity != nil {
		qty = *r.Quantity
	}
	if qty < 1 {
		return model.OrderItem{}, errInvalidItem
	}
	price, valid := parsePrice(*r.UnitPrice)
	if !valid {
		return model.OrderItem{}, errInvalidItem
	}
	return model.OrderItem{ProductID: *r.ProductID, Quantity: qty, UnitPrice: price, IsColdDrink: r.IsColdDrink}, nil
}

// List: GET /api/orders[?status=]
func (h *OrderHandler) List(c echo.Context) error {
	var status *model.OrderStatus
	if v := c.QueryParam("status"); v != "" {
		s := model.OrderStatus(v)
		if !s.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		status = &s
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Orders.List(ctx, status)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, list)
}

// Get: GET /api/orders/:id, items included.
func (h *OrderHandler) Get(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, o)
}

// ListByUser: GET /api/orders/user/:user_id, newest first.
func (h *OrderHandler) ListByUser(c echo.Context) error {
	id, valid := parseID(c, "user_id")
	if !valid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	list, err := h.Orders.ListByUser(ctx, id)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No orders found for this user"})
	}
	return ok(c, http.StatusOK, list)
}

// Create: POST /api/orders.  Anonymous orders are allowed; a signed-in
// caller is recorded as the order's user.  With table_id the restaurant is
// taken from the table.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Order must have at least one item"})
	}
	if req.TotalPrice == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Total price is required and must be a number"})
	}
	total, valid := parsePrice(*req.TotalPrice)
	if !valid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Total price is required and must be a number"})
	}
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, r := range req.Items {
		it, err := r.toModel()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		items = append(items, it)
	}

	o := model.Order{TableID: req.TableID, UserID: req.UserID, TotalPrice: total, Status: model.OrderPending}
	if ident, signedIn := middleware.CurrentIdentity(c); signedIn {
		uid := ident.UserID
		o.UserID = &uid
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	switch {
	case req.TableID != nil:
		t, err := h.Tables.GetByID(ctx, *req.TableID)
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid table_id: Table not found"})
		}
		if err != nil {
			return err
		}
		o.RestaurantID = t.RestaurantID
	case req.RestaurantID != nil && *req.RestaurantID != 0:
		o.RestaurantID = *req.RestaurantID
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id is required when table_id is not provided"})
	}

	created, err := h.Orders.CreateWithItems(ctx, o, items)
	if err != nil {
		return repoError(c, err)
	}

	if h.Events != nil {
		go h.publish(created)
	}

	items = created.Items
	created.Items = nil
	return ok(c, http.StatusCreated, echo.Map{"order": created, "items": items})
}

// publish runs detached from the request context.  Failures are logged
// and otherwise ignored.
func (h *OrderHandler) publish(o model.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := h.Events.PublishOrderCreated(ctx, o); err != nil {
		h.Log.Warn("order.created not published",
			slog.Uint64("order_id", o.ID), slog.Any("err", err))
	}
}

// Update: PUT /api/orders/:id.  Only the provided fields change.
func (h *OrderHandler) Update(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	var req updateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if req.RestaurantID != nil {
		o.RestaurantID = *req.RestaurantID
	}
	if req.TableID != nil {
		o.TableID = req.TableID
	}
	if req.UserID != nil {
		o.UserID = req.UserID
	}
	if req.TotalPrice != nil {
		total, valid := parsePrice(*req.TotalPrice)
		if !valid {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_price must be a non-negative number"})
		}
		o.TotalPrice = total
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		o.Status = *req.Status
	}
	updated, err := h.Orders.Update(ctx, o)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// UpdateStatus: PATCH /api/orders/:id/status.  Staff may accept or cancel.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	var req struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != model.OrderAccepted && req.Status != model.OrderCancelled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Status must be 'accepted' or 'cancelled'"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if _, err := h.Orders.GetByID(ctx, id); err != nil {
		return repoError(c, err)
	}
	updated, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return repoError(c, err)
	}
	return ok(c, http.StatusOK, updated)
}

// Delete: DELETE /api/orders/:id
func (h *OrderHandler) Delete(c echo.Context) error {
	id, valid := parseID(c, "id")
	if !valid {
		return badID(c)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Orders.Delete(ctx, id); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Order deleted"})
}
