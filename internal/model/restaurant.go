package model

import "time"

// Restaurant represents a venue.  Tables, staff and orders all point at a
// restaurant.
type Restaurant struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Location  *string   `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RestaurantTable is a physical table inside a restaurant.  Orders placed
// from a table inherit the table's restaurant.
type RestaurantTable struct {
	ID           uint64    `json:"id"`
	RestaurantID uint64    `json:"restaurant_id"`
	TableName    string    `json:"table_name"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
