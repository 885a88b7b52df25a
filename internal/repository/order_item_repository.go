package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

// OrderItemRepo manages individual order lines.
type OrderItemRepo struct{ DB *sql.DB }

func NewOrderItemRepo(db *sql.DB) *OrderItemRepo { return &OrderItemRepo{DB: db} }

const orderItemColumns = "id, order_id, product_id, quantity, unit_price, is_cold_drink, created_at, updated_at"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanOrderItem(row interface{ Scan(...any) error }) (model.OrderItem, error) {
	var it model.OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.IsColdDrink, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func listItems(ctx context.Context, q querier, where string, args ...any) ([]model.OrderItem, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+orderItemColumns+" FROM order_items "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.OrderItem{}
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// List returns every order item.
func (r *OrderItemRepo) List(ctx context.Context) ([]model.OrderItem, error) {
	return listItems(ctx, r.DB, "")
}

// GetByID fetches one order item.
func (r *OrderItemRepo) GetByID(ctx context.Context, id uint64) (model.OrderItem, error) {
	it, err := scanOrderItem(r.DB.QueryRowContext(ctx,
		"SELECT "+orderItemColumns+" FROM order_items WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.OrderItem{}, ErrOrderItemNotFound
	}
	return it, err
}

// Create adds an item to an existing order.  Unknown orders or products
// yield ErrInvalidReference.
func (r *OrderItemRepo) Create(ctx context.Context, it model.OrderItem) (model.OrderItem, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO order_items (order_id, product_id, quantity, unit_price, is_cold_drink) VALUES (?,?,?,?,?)",
		it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.IsColdDrink)
	if err != nil {
		return model.OrderItem{}, mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.OrderItem{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update overwrites an order item.
func (r *OrderItemRepo) Update(ctx context.Context, it model.OrderItem) (model.OrderItem, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE order_items SET order_id=?, product_id=?, quantity=?, unit_price=?, is_cold_drink=? WHERE id=?",
		it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.IsColdDrink, it.ID); err != nil {
		return model.OrderItem{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, it.ID)
}

// Delete removes an order item.
func (r *OrderItemRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM order_items WHERE id=?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}
