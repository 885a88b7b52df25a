package model

import "time"

// Role is the authorization level of a user.
type Role string

// Roles stored in users.role.
const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
	RoleClient  Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCashier, RoleClient:
		return true
	}
	return false
}

// User mirrors a row of the `users` table.  PasswordHash is nil for
// accounts that were provisioned without a password and can only sign in
// through a linked OAuth provider.
//
// Fields:
//
//	ID           – primary key identifier.
//	RestaurantID – restaurant the staff member belongs to (nil for clients).
//	Name         – display name.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash (nullable).
//	Role         – admin, cashier or client.
type User struct {
	ID           uint64    `json:"id"`
	RestaurantID *uint64   `json:"restaurant_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can sign in with a password.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 digest of the issued token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
