package model

import "time"

// ProviderGoogle is the provider name used for Google sign-in.
const ProviderGoogle = "google"

// OAuthAccount binds one external provider identity to exactly one local
// user.  (Provider, ProviderID) is unique and the row is removed together
// with its user.
type OAuthAccount struct {
	ID           string    `json:"id"` // UUID v4
	Provider     string    `json:"provider"`
	ProviderID   string    `json:"provider_id"`
	AccessToken  *string   `json:"-"` // cached provider access token
	RefreshToken *string   `json:"-"` // cached provider refresh token
	UserID       uint64    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OAuthProfile is the identity a provider returns after a successful
// authorization-code exchange.
type OAuthProfile struct {
	Provider    string `json:"provider"`
	ProviderID  string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Photo       string `json:"photo"`
}

// ProviderTokens are the credentials the provider issued for a profile.
type ProviderTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
