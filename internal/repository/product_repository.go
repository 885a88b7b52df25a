package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

// ProductRepo manages menu products.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// productSelect joins the owning category so listings can embed it.
const productSelect = `SELECT p.id, p.name, p.description, p.price, p.image_url, p.is_available,
       p.is_out_of_stock, p.category_id, p.created_at, p.updated_at,
       c.id, c.name, c.image_url
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var (
		p       model.Product
		catID   sql.NullInt64
		catName sql.NullString
		catImg  *string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.IsAvailable,
		&p.IsOutOfStock, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
		&catID, &catName, &catImg)
	if err != nil {
		return model.Product{}, err
	}
	if catID.Valid {
		p.Category = &model.CategoryRef{ID: uint64(catID.Int64), Name: catName.String, ImageURL: catImg}
	}
	return p, nil
}

// List returns products matching f ordered by name.  Each filter is ANDed
// only when set.
func (r *ProductRepo) List(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.CategoryID != nil {
		where = append(where, "p.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.Available != nil {
		where = append(where, "p.is_available = ?")
		args = append(args, *f.Available)
	}
	if f.OutOfStock != nil {
		where = append(where, "p.is_out_of_stock = ?")
		args = append(args, *f.OutOfStock)
	}
	q := productSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY p.name ASC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches one product with its category.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx, productSelect+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrProductNotFound
	}
	return p, err
}

// Create inserts a product.  An unknown category yields ErrInvalidReference.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO products (name, description, price, image_url, is_available, is_out_of_stock, category_id)
		 VALUES (?,?,?,?,?,?,?)`,
		p.Name, p.Description, p.Price, p.ImageURL, p.IsAvailable, p.IsOutOfStock, p.CategoryID)
	if err != nil {
		return model.Product{}, mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// CreateBulk inserts products in one statement inside a transaction.  One
// bad row (for example an unknown category) rolls back the whole batch.
func (r *ProductRepo) CreateBulk(ctx context.Context, products []model.Product) (out []model.Product, err error) {
	if len(products) == 0 {
		return []model.Product{}, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	query := "INSERT INTO products (name, description, price, image_url, is_available, is_out_of_stock, category_id) VALUES "
	args := make([]any, 0, len(products)*7)
	for i, p := range products {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, p.Name, p.Description, p.Price, p.ImageURL, p.IsAvailable, p.IsOutOfStock, p.CategoryID)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	first, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx, productSelect+" WHERE p.id BETWEEN ? AND ? ORDER BY p.id",
		first, first+int64(len(products))-1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) != len(products) {
		return nil, fmt.Errorf("product bulk insert: stored %d of %d rows", len(out), len(products))
	}
	return out, nil
}

// Update overwrites a product.
func (r *ProductRepo) Update(ctx context.Context, p model.Product) (model.Product, error) {
	if _, err := r.DB.ExecContext(ctx,
		`UPDATE products SET name=?, description=?, price=?, image_url=?, is_available=?,
		        is_out_of_stock=?, category_id=? WHERE id=?`,
		p.Name, p.Description, p.Price, p.ImageURL, p.IsAvailable, p.IsOutOfStock, p.CategoryID, p.ID); err != nil {
		return model.Product{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, p.ID)
}

// Delete removes a product.  Products already ordered cannot be deleted
// (ErrConflict); mark them unavailable instead.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
