package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order statuses stored in orders.status.
const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order is placed at a restaurant, optionally from a table and optionally
// by a signed-in user.  A nil UserID marks an anonymous order.
type Order struct {
	ID           uint64      `json:"id"`
	RestaurantID uint64      `json:"restaurant_id"`
	TableID      *uint64     `json:"table_id"`
	UserID       *uint64     `json:"user_id"`
	TotalPrice   string      `json:"total_price"`
	Status       OrderStatus `json:"status"`
	Items        []OrderItem `json:"items,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ID          uint64    `json:"id"`
	OrderID     uint64    `json:"order_id"`
	ProductID   uint64    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	IsColdDrink bool      `json:"is_cold_drink"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
