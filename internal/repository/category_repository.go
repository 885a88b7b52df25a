package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

// CategoryRepo manages menu categories.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

const categoryColumns = "id, name, description, image_url, created_at, updated_at"

func scanCategory(row interface{ Scan(...any) error }) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a category and returns the stored row.
func (r *CategoryRepo) Create(ctx context.Context, c model.Category) (model.Category, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, description, image_url) VALUES (?,?,?)",
		c.Name, c.Description, c.ImageURL)
	if err != nil {
		return model.Category{}, mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// CreateBulk inserts all categories in a single statement inside one
// transaction and returns the stored rows in input order.  Either every
// row is written or none is.
func (r *CategoryRepo) CreateBulk(ctx context.Context, cats []model.Category) (out []model.Category, err error) {
	if len(cats) == 0 {
		return []model.Category{}, nil
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

	query := "INSERT INTO categories (name, description, image_url) VALUES "
	args := make([]any, 0, len(cats)*3)
	for i, c := range cats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, c.Name, c.Description, c.ImageURL)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	// a multi-row insert reports the id of its first row; the rest follow
	first, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id BETWEEN ? AND ? ORDER BY id",
		first, first+int64(len(cats))-1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) != len(cats) {
		return nil, fmt.Errorf("category bulk insert: stored %d of %d rows", len(out), len(cats))
	}
	return out, nil
}

// GetByID fetches a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	c, err := scanCategory(r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrCategoryNotFound
	}
	return c, err
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites a category.
func (r *CategoryRepo) Update(ctx context.Context, c model.Category) (model.Category, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET name=?, description=?, image_url=? WHERE id=?",
		strings.TrimSpace(c.Name), c.Description, c.ImageURL, c.ID); err != nil {
		return model.Category{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, c.ID)
}

// Delete removes a category.  Categories that still hold products cannot
// be deleted (ErrConflict).
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
