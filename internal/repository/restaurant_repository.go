package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

// RestaurantRepo provides CRUD operations for restaurants.
type RestaurantRepo struct{ DB *sql.DB }

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{DB: db} }

// Create inserts a restaurant and returns the stored row.  Names are
// unique; a duplicate yields ErrConflict.
func (r *RestaurantRepo) Create(ctx context.Context, name string, location *string) (model.Restaurant, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurants (name, location) VALUES (?, ?)", name, location)
	if err != nil {
		return model.Restaurant{}, mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Restaurant{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a restaurant by id.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (model.Restaurant, error) {
	var m model.Restaurant
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, location, created_at, updated_at FROM restaurants WHERE id = ?", id).
		Scan(&m.ID, &m.Name, &m.Location, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Restaurant{}, ErrRestaurantNotFound
	}
	return m, err
}

// List returns all restaurants ordered by id.
func (r *RestaurantRepo) List(ctx context.Context) ([]model.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, location, created_at, updated_at FROM restaurants ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Restaurant{}
	for rows.Next() {
		var m model.Restaurant
		if err := rows.Scan(&m.ID, &m.Name, &m.Location, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update replaces the name and location of an existing restaurant.
func (r *RestaurantRepo) Update(ctx context.Context, m model.Restaurant) (model.Restaurant, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE restaurants SET name = ?, location = ? WHERE id = ?", m.Name, m.Location, m.ID); err != nil {
		return model.Restaurant{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, m.ID)
}

// Delete removes a restaurant.  Tables cascade; orders and staff block the
// delete with ErrConflict.
func (r *RestaurantRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM restaurants WHERE id = ?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}
