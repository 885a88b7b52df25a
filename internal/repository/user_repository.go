package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,restaurant_id,name,email,password_hash,role,created_at,updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.RestaurantID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// NormalizeEmail lower-cases and trims an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u and reloads it so the returned value carries the
// database generated id and timestamps.  A duplicate email yields
// ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (model.User, error) {
	if u.Role == "" {
		u.Role = model.RoleClient
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (restaurant_id, name, email, password_hash, role) VALUES (?,?,?,?,?)",
		u.RestaurantID, u.Name, NormalizeEmail(u.Email), u.PasswordHash, string(u.Role))
	if err != nil {
		if errors.Is(mapWriteErr(err), ErrConflict) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// ListByRole returns every user holding role, oldest first.
func (r *UserRepo) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? ORDER BY id", string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update overwrites the mutable profile columns of u.  The password hash is
// only replaced when u.PasswordHash is non-nil.
func (r *UserRepo) Update(ctx context.Context, u model.User) (model.User, error) {
	var err error
	if u.PasswordHash != nil {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE users SET restaurant_id=?, name=?, email=?, password_hash=?, role=? WHERE id=?",
			u.RestaurantID, u.Name, NormalizeEmail(u.Email), u.PasswordHash, string(u.Role), u.ID)
	} else {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE users SET restaurant_id=?, name=?, email=?, role=? WHERE id=?",
			u.RestaurantID, u.Name, NormalizeEmail(u.Email), string(u.Role), u.ID)
	}
	if err != nil {
		if errors.Is(mapWriteErr(err), ErrConflict) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, mapWriteErr(err)
	}
	return r.GetByID(ctx, u.ID)
}

// Delete removes a user.  Linked OAuth accounts and refresh tokens are
// removed by ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return mapWriteErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
