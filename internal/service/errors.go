package service

import "errors"

// Errors returned by the authentication service.  Handlers map them to HTTP
// status codes; anything else is an internal error.
var (
	// ErrMissingField means a required input was absent (400).
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidCredentials covers an unknown email in strict mode, an
	// account without a password and a password mismatch (401).
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnlinkedOAuthAccount means no local user matches the provider
	// profile's email.  Accounts are never created from a profile alone.
	ErrUnlinkedOAuthAccount = errors.New("no local account for this provider identity")
	// ErrOrphanedOAuthAccount means a provider link exists but its user
	// could not be found by email.  This is a data-integrity fault.
	ErrOrphanedOAuthAccount = errors.New("provider identity is linked to a missing account")
	// ErrConflict means the email is already registered (409).
	ErrConflict = errors.New("user already exists")
	// ErrInvalidRefreshToken covers malformed, expired, revoked and unknown
	// refresh tokens (401).
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrInvalidPassword means a new password is longer than bcrypt
	// accepts (400).
	ErrInvalidPassword = errors.New("password must be at most 72 bytes")
	// ErrInvalidRole means a role outside admin, cashier and client (400).
	ErrInvalidRole = errors.New("invalid role")
	// ErrForbidden means the caller may not perform the operation (403).
	ErrForbidden = errors.New("forbidden")
)
