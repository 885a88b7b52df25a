package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
	"github.com/iliyamo/restaurant-order-service/internal/middleware"
	"github.com/iliyamo/restaurant-order-service/internal/model"
	"github.com/iliyamo/restaurant-order-service/internal/repository"
)

type fakeOrders struct {
	mu     sync.Mutex
	orders map[uint64]model.Order
	nextID uint64
}

func newFakeOrders() *fakeOrders { return &fakeOrders{orders: map[uint64]model.Order{}} }

func (f *fakeOrders) CreateWithItems(_ context.Context, o model.Order, items []model.OrderItem) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = time.Now().UTC()
	for i := range items {
		items[i].ID = uint64(i + 1)
		items[i].OrderID = o.ID
	}
	o.Items = items
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrders) GetByID(_ context.Context, id uint64) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return model.Order{}, repository.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) List(context.Context, *model.OrderStatus) ([]model.Order, error) {
	return nil, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID uint64) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Order{}
	for _, o := range f.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Update(_ context.Context, o model.Order) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uint64, s model.OrderStatus) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.orders[id]
	o.Status = s
	f.orders[id] = o
	return o, nil
}

func (f *fakeOrders) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

type fakeTables map[uint64]model.RestaurantTable

func (f fakeTables) GetByID(_ context.Context, id uint64) (model.RestaurantTable, error) {
	t, ok := f[id]
	if !ok {
		return model.RestaurantTable{}, repository.ErrTableNotFound
	}
	return t, nil
}

type chanPublisher chan model.Order

func (p chanPublisher) PublishOrderCreated(_ context.Context, o model.Order) error {
	p <- o
	return nil
}

func newOrderHandler() (*OrderHandler, *fakeOrders, chanPublisher) {
	orders := newFakeOrders()
	events := make(chanPublisher, 1)
	return &OrderHandler{
		Orders: orders,
		Tables: fakeTables{4: {ID: 4, RestaurantID: 9, TableName: "T4"}},
		Events: events,
		Log:    discardLogger(),
	}, orders, events
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no items", `{"restaurant_id":1,"total_price":10,"items":[]}`, "at least one item"},
		{"missing total", `{"restaurant_id":1,"items":[{"product_id":1,"unit_price":5}]}`, "Total price"},
		{"negative total", `{"restaurant_id":1,"total_price":-3,"items":[{"product_id":1,"unit_price":5}]}`, "Total price"},
		{"text total", `{"restaurant_id":1,"total_price":"ten","items":[{"product_id":1,"unit_price":5}]}`, "invalid body"},
		{"item without price", `{"restaurant_id":1,"total_price":10,"items":[{"product_id":1}]}`, "each item"},
		{"zero quantity", `{"restaurant_id":1,"total_price":10,"items":[{"product_id":1,"unit_price":5,"quantity":0}]}`, "each item"},
		{"unknown table", `{"table_id":99,"total_price":10,"items":[{"product_id":1,"unit_price":5}]}`, "Invalid table_id"},
		{"no restaurant", `{"total_price":10,"items":[{"product_id":1,"unit_price":5}]}`, "restaurant_id is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, orders, _ := newOrderHandler()
			c, rec := postJSON(echo.New(), "/api/orders", tc.body)
			if err := h.Create(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Errorf("body %s lacks %q", rec.Body, tc.want)
			}
			if len(orders.orders) != 0 {
				t.Error("nothing may be written on a validation failure")
			}
		})
	}
}

func TestCreateOrderFromTable(t *testing.T) {
	h, orders, events := newOrderHandler()
	c, rec := postJSON(echo.New(), "/api/orders",
		`{"table_id":4,"restaurant_id":1,"total_price":"17.5","items":[{"product_id":3,"unit_price":7.5,"quantity":2},{"product_id":5,"unit_price":"2.5","is_cold_drink":true}]}`)
	if err := h.Create(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	o := orders.orders[1]
	if o.RestaurantID != 9 {
		t.Errorf("restaurant = %d, want the table's restaurant 9", o.RestaurantID)
	}
	if o.TotalPrice != "17.50" || o.Status != model.OrderPending || o.UserID != nil {
		t.Errorf("unexpected order %+v", o)
	}
	if len(o.Items) != 2 || o.Items[1].Quantity != 1 || !o.Items[1].IsColdDrink || o.Items[0].UnitPrice != "7.50" {
		t.Errorf("unexpected items %+v", o.Items)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Order model.Order       `json:"order"`
			Items []model.OrderItem `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Data.Order.ID != 1 || len(body.Data.Items) != 2 {
		t.Errorf("unexpected body %s", rec.Body)
	}

	select {
	case ev := <-events:
		if ev.ID != 1 {
			t.Errorf("published order %d", ev.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("order.created not published")
	}
}

func TestCreateOrderRecordsSignedInUser(t *testing.T) {
	h, orders, events := newOrderHandler()
	c, _ := postJSON(echo.New(), "/api/orders",
		`{"restaurant_id":2,"user_id":55,"total_price":3,"items":[{"product_id":1,"unit_price":3}]}`)
	middleware.SetIdentity(c, auth.Identity{UserID: 7, Role: model.RoleClient})
	if err := h.Create(c); err != nil {
		t.Fatal(err)
	}
	<-events
	if uid := orders.orders[1].UserID; uid == nil || *uid != 7 {
		t.Errorf("user id = %v, want 7", uid)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	tests := []struct {
		status string
		want   int
	}{
		{"accepted", http.StatusOK},
		{"cancelled", http.StatusOK},
		{"completed", http.StatusBadRequest},
		{"", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			h, orders, _ := newOrderHandler()
			orders.orders[1] = model.Order{ID: 1, RestaurantID: 1, Status: model.OrderPending}

			c, rec := postJSON(echo.New(), "/api/orders/1/status", `{"status":"`+tc.status+`"}`)
			c.SetParamNames("id")
			c.SetParamValues("1")
			if err := h.UpdateStatus(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			if tc.want == http.StatusOK && orders.orders[1].Status != model.OrderStatus(tc.status) {
				t.Errorf("stored status %q", orders.orders[1].Status)
			}
		})
	}
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	h, _, _ := newOrderHandler()
	c, rec := postJSON(echo.New(), "/api/orders/5/status", `{"status":"accepted"}`)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.UpdateStatus(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestListOrdersByUserEmpty(t *testing.T) {
	h, _, _ := newOrderHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/user/3", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("3")
	if err := h.ListByUser(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}
