package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

// TableRepo manages restaurant_tables.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

const tableColumns = "id, restaurant_id, table_name, description, created_at, updated_at"

func scanTable(row interface{ Scan(...any) error }) (model.RestaurantTable, error) {
	var t model.RestaurantTable
	err := row.Scan(&t.ID, &t.RestaurantID, &t.TableName, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a table.  An unknown restaurant yields ErrInvalidReference.
func (r *TableRepo) Create(ctx context.Context, t model.RestaurantTable) (model.RestaurantTable, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurant_tables (restaurant_id, table_name, description) VALUES (?,?,?)",
		t.RestaurantID, t.TableName, t.Description)
	if err != nil {
		return model.RestaurantTable{}, mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.RestaurantTable{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a table by id.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.RestaurantTable, error) {
	t, err := scanTable(r.DB.QueryRowContext(ctx,
		"SELECT "+tableColumns+" FROM restaurant_tables WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.RestaurantTable{}, ErrTableNotFound
	}
	return t, err
}

// List returns tables, optionally restricted to one restaurant.
func (r *TableRepo) List(ctx context.Context, restaurantID *uint64) ([]model.RestaurantTable, error) {
	q := "SELECT " + tableColumns + " FROM restaurant_tables"
	var args []any
	if restaurantID != nil {
		q += " WHERE restaurant_id=?"
		args = append(args, *restaurantID)
	}
	q += " ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RestaurantTable{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update overwrites a table's columns.
func (r *TableRepo) Update(ctx context.Context, t model.RestaurantTable) (model.RestaurantTable, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE restaurant_tables SET restaurant_id=?, table_name=?, description=? WHERE id=?",
		t.RestaurantID, t.TableName, t.Description, t.ID); err != nil {
		return model.RestaurantTable{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, t.ID)
}

// Delete removes a table.  Orders placed at it keep a NULL table_id.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM restaurant_tables WHERE id=?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	return nil
}
