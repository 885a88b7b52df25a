package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

// OrderRepo persists orders and their items.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

const orderColumns = "id, restaurant_id, table_id, user_id, total_price, status, created_at, updated_at"

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateWithItems writes the order and every item in a single
// transaction and returns the stored order with its items attached.
func (r *OrderRepo) CreateWithItems(ctx context.Context, o model.Order, items []model.OrderItem) (created model.Order, err error) {
	if o.Status == "" {
		o.Status = model.OrderPending
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (restaurant_id, table_id, user_id, total_price, status) VALUES (?,?,?,?,?)",
		o.RestaurantID, o.TableID, o.UserID, o.TotalPrice, string(o.Status))
	if err != nil {
		return model.Order{}, mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	orderID := uint64(id)

	for _, it := range items {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, quantity, unit_price, is_cold_drink) VALUES (?,?,?,?,?)",
			orderID, it.ProductID, it.Quantity, it.UnitPrice, it.IsColdDrink); err != nil {
			return model.Order{}, mapWriteErr(err)
		}
	}

	created, err = scanOrder(tx.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=?", orderID))
	if err != nil {
		return model.Order{}, err
	}
	created.Items, err = listItems(ctx, tx, "WHERE order_id=?", orderID)
	if err != nil {
		return model.Order{}, err
	}
	return created, nil
}

// GetByID fetches an order together with its items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	o.Items, err = listItems(ctx, r.DB, "WHERE order_id=?", id)
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// List returns orders oldest first, optionally filtered by status.
func (r *OrderRepo) List(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	q := "SELECT " + orderColumns + " FROM orders"
	var args []any
	if status != nil {
		q += " WHERE status=?"
		args = append(args, string(*status))
	}
	return r.query(ctx, q+" ORDER BY id", args...)
}

// ListByUser returns a user's orders newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	return r.query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id=? ORDER BY created_at DESC, id DESC", userID)
}

func (r *OrderRepo) query(ctx context.Context, q string, args ...any) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Update overwrites the order header.  Items are managed separately.
func (r *OrderRepo) Update(ctx context.Context, o model.Order) (model.Order, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET restaurant_id=?, table_id=?, user_id=?, total_price=?, status=? WHERE id=?",
		o.RestaurantID, o.TableID, o.UserID, o.TotalPrice, string(o.Status), o.ID); err != nil {
		return model.Order{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, o.ID)
}

// UpdateStatus moves an order to status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (model.Order, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=?", string(status), id); err != nil {
		return model.Order{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an order; its items cascade.
func (r *OrderRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM orders WHERE id=?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
