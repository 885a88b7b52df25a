// Package repository contains data access logic separated from HTTP
// handlers.  Every repository wraps a *sql.DB and speaks plain SQL to MySQL.
//
// The sentinel errors below let handlers distinguish failure scenarios
// without inspecting driver errors: ErrConflict maps to HTTP 409,
// ErrInvalidReference to 400 and the per-entity not-found errors to 404.
package repository

import (
	"errors"

	"github.com/iliyamo/restaurant-order-service/internal/database"
)

// ErrConflict is returned when a write violates a unique constraint or
// when a delete is blocked by dependent rows.
var ErrConflict = errors.New("conflict")

// ErrInvalidReference is returned when a write points at a row that does
// not exist (for example a product in an unknown category).
var ErrInvalidReference = errors.New("invalid reference")

// Not-found errors, one per table.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOAuthAccountNotFound = errors.New("oauth account not found")
	ErrRefreshNotFound      = errors.New("refresh token not found")
	ErrRestaurantNotFound   = errors.New("restaurant not found")
	ErrTableNotFound        = errors.New("table not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderItemNotFound    = errors.New("order item not found")
)

// ErrEmailExists is returned when a user is created or renamed to an email
// that already belongs to someone else.
var ErrEmailExists = errors.New("email already exists")

// mapWriteErr converts MySQL constraint failures into sentinel errors.
func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case database.IsDuplicateKey(err):
		return ErrConflict
	case database.IsForeignKeyViolation(err):
		if database.IsRowReferenced(err) {
			return ErrConflict
		}
		return ErrInvalidReference
	}
	return err
}
