// Package service holds the authentication and session logic that sits
// between the HTTP handlers and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-order-service/internal/auth"
	"github.com/iliyamo/restaurant-order-service/internal/config"
	"github.com/iliyamo/restaurant-order-service/internal/model"
	"github.com/iliyamo/restaurant-order-service/internal/repository"
	"github.com/iliyamo/restaurant-order-service/internal/utils"
)

// UserStore is the part of the credential store the service needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// OAuthAccountStore persists provider identity links.
type OAuthAccountStore interface {
	GetByProvider(ctx context.Context, provider, providerID string) (model.OAuthAccount, error)
	Create(ctx context.Context, provider, providerID string, userID uint64, tokens model.ProviderTokens) (model.OAuthAccount, error)
	UpdateTokens(ctx context.Context, id string, tokens model.ProviderTokens) error
}

// TokenLedger records issued refresh tokens.
type TokenLedger interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthConfig is the explicit configuration of the service.
type AuthConfig struct {
	Tokens     utils.TokenConfig
	SessionTTL time.Duration // lifetime of a ledger row
	BcryptCost int
	LoginMode  string // config.LoginModeStrict or config.LoginModePermissive
}

// Session is the outcome of a successful sign-in.  Access and Refresh are
// zero when no tokens were issued (staff accounts created by an admin).
type Session struct {
	User      model.User
	Access    utils.AccessToken
	Refresh   utils.RefreshToken
	IsNewUser bool
}

// LoginInput is the body of a password login.  Name is only used when the
// permissive mode provisions a new account.
type LoginInput struct {
	Email    string
	Password string
	Name     string
}

// RegisterInput describes an account created through the users API.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         model.Role
	RestaurantID *uint64
}

type Auth struct {
	log      *slog.Logger
	users    UserStore
	accounts OAuthAccountStore
	ledger   TokenLedger
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuth(log *slog.Logger, users UserStore, accounts OAuthAccountStore, ledger TokenLedger, cfg AuthConfig) *Auth {
	if cfg.BcryptCost < utils.MinBcryptCost {
		cfg.BcryptCost = utils.MinBcryptCost
	}
	return &Auth{
		log:      log,
		users:    users,
		accounts: accounts,
		ledger:   ledger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates with email and password.  In strict mode an unknown
// email fails; in permissive mode it provisions a client account and the
// session reports IsNewUser.  Nothing is written when authentication fails.
func (a *Auth) Login(ctx context.Context, in LoginInput) (Session, error) {
	const op = "auth.Login"
	log := a.log.With(slog.String("op", op))

	email := repository.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, ErrMissingField
	}

	isNew := false
	user, err := a.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		if a.cfg.LoginMode != config.LoginModePermissive {
			log.Info("login for unknown email")
			return Session{}, ErrInvalidCredentials
		}
		user, err = a.createUser(ctx, in.Name, email, in.Password, model.RoleClient, nil)
		if err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		isNew = true
		log.Info("provisioned account on first login", slog.Uint64("user_id", user.ID))
	case err != nil:
		log.Error("failed to load user", slog.Any("err", err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	default:
		if !user.HasPassword() || !utils.VerifyPassword(*user.PasswordHash, in.Password) {
			log.Info("password verification failed", slog.Uint64("user_id", user.ID))
			return Session{}, ErrInvalidCredentials
		}
	}

	s, err := a.issue(ctx, user)
	if err != nil {
		log.Error("failed to issue session", slog.Any("err", err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	s.IsNewUser = isNew
	return s, nil
}

// OAuthLogin resolves a provider profile to exactly one local user.
//
// A known (provider, providerID) link has its cached provider tokens
// refreshed; an unknown link is created when a user with the profile's
// email exists.  A user is never created from a profile.
func (a *Auth) OAuthLogin(ctx context.Context, p model.OAuthProfile, tokens model.ProviderTokens) (Session, error) {
	const op = "auth.OAuthLogin"
	log := a.log.With(slog.String("op", op))

	provider := strings.TrimSpace(p.Provider)
	if provider == "" {
		provider = model.ProviderGoogle
	}
	email := repository.NormalizeEmail(p.Email)
	if p.ProviderID == "" || email == "" {
		return Session{}, ErrMissingField
	}
	log = log.With(slog.String("provider", provider), slog.String("provider_id", p.ProviderID))

	var user model.User
	acc, err := a.accounts.GetByProvider(ctx, provider, p.ProviderID)
	switch {
	case err == nil:
		user, err = a.users.GetByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("oauth account references a missing user",
				slog.String("account_id", acc.ID), slog.Uint64("linked_user_id", acc.UserID))
			return Session{}, ErrOrphanedOAuthAccount
		}
		if err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		if user.ID != acc.UserID {
			log.Warn("profile email resolves to a different user than the link",
				slog.Uint64("linked_user_id", acc.UserID), slog.Uint64("user_id", user.ID))
		}
		if err := a.accounts.UpdateTokens(ctx, acc.ID, tokens); err != nil {
			log.Error("failed to update provider tokens", slog.Any("err", err))
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
	case errors.Is(err, repository.ErrOAuthAccountNotFound):
		user, err = a.users.GetByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Info("no local account for provider identity")
			return Session{}, ErrUnlinkedOAuthAccount
		}
		if err != nil {
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := a.accounts.Create(ctx, provider, p.ProviderID, user.ID, tokens); err != nil {
			log.Error("failed to link provider identity", slog.Any("err", err))
			return Session{}, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("linked provider identity", slog.Uint64("user_id", user.ID))
	default:
		log.Error("failed to load oauth account", slog.Any("err", err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s, err := a.issue(ctx, user)
	if err != nil {
		log.Error("failed to issue session", slog.Any("err", err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Refresh exchanges a live refresh token for a new pair.  The presented
// token is revoked, so each refresh token can be used once.
func (a *Auth) Refresh(ctx context.Context, raw string) (Session, error) {
	const op = "auth.Refresh"
	log := a.log.With(slog.String("op", op))

	if raw == "" {
		return Session{}, ErrMissingField
	}
	claims, err := utils.ParseRefreshToken(a.cfg.Tokens.Secret, raw)
	if err != nil {
		return Session{}, ErrInvalidRefreshToken
	}
	hash := utils.HashRefreshRaw(raw)

	row, err := a.ledger.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrRefreshNotFound) {
		log.Info("refresh token not in ledger", slog.Uint64("user_id", claims.UserID))
		return Session{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if row.UserID != claims.UserID {
		log.Warn("refresh token owner mismatch", slog.Uint64("claims_user_id", claims.UserID), slog.Uint64("ledger_user_id", row.UserID))
		return Session{}, ErrInvalidRefreshToken
	}

	if err := a.ledger.RevokeByHash(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrRefreshNotFound) {
			// lost a race with another refresh of the same token
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.users.GetByID(ctx, row.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Session{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s, err := a.issue(ctx, user)
	if err != nil {
		log.Error("failed to issue session", slog.Any("err", err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Logout revokes the given refresh token.  Without one, an authenticated
// caller has all of their refresh tokens revoked.  Revoking an unknown or
// already revoked token is not an error.
func (a *Auth) Logout(ctx context.Context, raw string, caller *auth.Identity) error {
	const op = "auth.Logout"

	if raw != "" {
		err := a.ledger.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
		if err != nil && !errors.Is(err, repository.ErrRefreshNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
	if caller == nil {
		return ErrMissingField
	}
	if err := a.ledger.RevokeAllForUser(ctx, caller.UserID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Register creates an account through the users API.  Clients are signed
// in immediately; admin and cashier accounts can only be created by an
// admin caller and receive no tokens.
func (a *Auth) Register(ctx context.Context, in RegisterInput, caller *auth.Identity) (Session, error) {
	const op = "auth.Register"
	log := a.log.With(slog.String("op", op))

	email := repository.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return Session{}, ErrMissingField
	}
	role := in.Role
	if role == "" {
		role = model.RoleClient
	}
	if !role.Valid() {
		return Session{}, ErrInvalidRole
	}
	if role != model.RoleClient && (caller == nil || !caller.IsAdmin()) {
		log.Warn("non-admin attempted to create staff account", slog.String("role", string(role)))
		return Session{}, ErrForbidden
	}

	user, err := a.createUser(ctx, in.Name, email, in.Password, role, in.RestaurantID)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if role != model.RoleClient {
		return Session{User: user, IsNewUser: true}, nil
	}

	s, err := a.issue(ctx, user)
	if err != nil {
		log.Error("failed to issue session", slog.Any("err", err))
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	s.IsNewUser = true
	return s, nil
}

// Identify verifies an access token and loads its user.
func (a *Auth) Identify(ctx context.Context, rawAccess string) (auth.Identity, error) {
	claims, err := utils.ParseAccessToken(a.cfg.Tokens.Secret, rawAccess)
	if err != nil {
		return auth.Identity{}, err
	}
	user, err := a.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return auth.Identity{}, utils.ErrInvalidToken
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// createUser hashes the password and inserts a user.  An empty name falls
// back to the local part of the email.
func (a *Auth) createUser(ctx context.Context, name, email, password string, role model.Role, restaurantID *uint64) (model.User, error) {
	if len(password) > utils.MaxPasswordBytes {
		return model.User{}, ErrInvalidPassword
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	hash, err := utils.HashPassword(password, a.cfg.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	user, err := a.users.Create(ctx, &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
		Role:         role,
		RestaurantID: restaurantID,
	})
	if errors.Is(err, repository.ErrEmailExists) {
		return model.User{}, ErrConflict
	}
	return user, err
}

// issue signs an access/refresh pair and records the refresh token.
func (a *Auth) issue(ctx context.Context, user model.User) (Session, error) {
	access, err := utils.NewAccessToken(a.cfg.Tokens, user.ID, user.Email)
	if err != nil {
		return Session{}, err
	}
	refresh, err := utils.NewRefreshToken(a.cfg.Tokens, user.ID)
	if err != nil {
		return Session{}, err
	}
	if err := a.ledger.StoreRefresh(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), a.now().Add(a.cfg.SessionTTL)); err != nil {
		return Session{}, err
	}
	return Session{User: user, Access: access, Refresh: refresh}, nil
}
