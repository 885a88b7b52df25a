package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

// OAuthAccountRepo stores provider identities linked to local users.
type OAuthAccountRepo struct{ DB *sql.DB }

func NewOAuthAccountRepo(db *sql.DB) *OAuthAccountRepo { return &OAuthAccountRepo{DB: db} }

// GetByProvider finds the account for (provider, providerID).
func (r *OAuthAccountRepo) GetByProvider(ctx context.Context, provider, providerID string) (model.OAuthAccount, error) {
	var a model.OAuthAccount
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, provider, provider_id, access_token, refresh_token, user_id, created_at, updated_at
		   FROM oauth_accounts WHERE provider=? AND provider_id=? LIMIT 1`,
		provider, providerID).Scan(&a.ID, &a.Provider, &a.ProviderID, &a.AccessToken, &a.RefreshToken,
		&a.UserID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OAuthAccount{}, ErrOAuthAccountNotFound
	}
	return a, err
}

// Create links a provider identity to userID.  A second link for the same
// (provider, providerID) fails with ErrConflict.
func (r *OAuthAccountRepo) Create(ctx context.Context, provider, providerID string, userID uint64, tokens model.ProviderTokens) (model.OAuthAccount, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO oauth_accounts (id, provider, provider_id, access_token, refresh_token, user_id)
		 VALUES (?,?,?,?,?,?)`,
		id, provider, providerID, nullString(tokens.AccessToken), nullString(tokens.RefreshToken), userID)
	if err != nil {
		return model.OAuthAccount{}, mapWriteErr(err)
	}
	return r.GetByProvider(ctx, provider, providerID)
}

// UpdateTokens replaces the cached provider tokens.  An empty refresh token
// keeps the stored one, since providers only return it on first consent.
func (r *OAuthAccountRepo) UpdateTokens(ctx context.Context, id string, tokens model.ProviderTokens) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE oauth_accounts SET access_token=?, refresh_token=COALESCE(?, refresh_token) WHERE id=?",
		nullString(tokens.AccessToken), nullString(tokens.RefreshToken), id)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
