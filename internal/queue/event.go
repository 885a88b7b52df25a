// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// OrderCreatedQueue is the durable queue order events are routed to.
const OrderCreatedQueue = "order.created"

// OrderCreatedEvent is published once an order and its items have been
// committed.  It carries enough information for a consumer to log or notify
// the kitchen without querying the primary database.
type OrderCreatedEvent struct {
	OrderID      uint64           `json:"order_id"`
	RestaurantID uint64           `json:"restaurant_id"`
	TableID      *uint64          `json:"table_id,omitempty"`
	UserID       *uint64          `json:"user_id,omitempty"`
	TotalPrice   string           `json:"total_price"`
	Status       string           `json:"status"`
	Items        []OrderEventItem `json:"items"`
	CreatedAt    string           `json:"created_at"`
}

// OrderEventItem is one line of an OrderCreatedEvent.
type OrderEventItem struct {
	ProductID   uint64 `json:"product_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	IsColdDrink bool   `json:"is_cold_drink"`
}
