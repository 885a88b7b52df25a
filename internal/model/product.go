package model

import "time"

// Category groups products on the menu.
type Category struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRef is the subset of a category embedded in product listings.
type CategoryRef struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"image_url"`
}

// Product is a menu item.  Prices are decimal strings ("12.50") so that the
// DECIMAL(10,2) column round-trips without float rounding.
type Product struct {
	ID           uint64       `json:"id"`
	Name         string       `json:"name"`
	Description  *string      `json:"description"`
	Price        string       `json:"price"`
	ImageURL     *string      `json:"image_url"`
	IsAvailable  bool         `json:"is_available"`
	IsOutOfStock bool         `json:"is_out_of_stock"`
	CategoryID   uint64       `json:"category_id"`
	Category     *CategoryRef `json:"Category,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ProductFilter narrows product listings.  Nil fields do not filter.
type ProductFilter struct {
	CategoryID *uint64
	Available  *bool
	OutOfStock *bool
}
