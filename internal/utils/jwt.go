package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding of digests and nonces
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token types carried in the "typ" claim so that one kind of token can never
// be accepted where another is expected.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenTypeState   = "oauth_state"
)

// ErrInvalidToken is returned for malformed, expired, wrongly signed or
// wrongly typed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenConfig carries the signing secret and lifetimes.  It is built once
// from the process configuration and passed to every issuer call.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AccessToken is a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken is a signed, long-lived JWT.  Raw goes back to the client;
// the ledger only keeps HashRefreshRaw(Raw).
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// AccessClaims is the claim set of an access token.
type AccessClaims struct {
	UserID uint64 `json:"userId"`
	Email  string `json:"email"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set of a refresh token.
type RefreshClaims struct {
	UserID uint64 `json:"userId"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type stateClaims struct {
	Nonce string `json:"nonce"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// NewAccessToken builds and signs an HS256 access token for a user.  The
// claims are userId, email, exp and iat.
func NewAccessToken(cfg TokenConfig, userID uint64, email string) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(cfg.AccessTTL)
	claims := AccessClaims{
		UserID: userID,
		Email:  email,
		Type:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := sign(cfg.Secret, claims)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 refresh token carrying only the
// user id.  A random jti keeps two tokens issued within the same second
// distinct, which matters because the ledger looks rows up by digest.
func NewRefreshToken(cfg TokenConfig, userID uint64) (RefreshToken, error) {
	jti, err := randomHex(16)
	if err != nil {
		return RefreshToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(cfg.RefreshTTL)
	claims := RefreshClaims{
		UserID: userID,
		Type:   tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := sign(cfg.Secret, claims)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Raw: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, expiry and type of an access token.
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parse(secret, raw, claims); err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeAccess || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseRefreshToken verifies signature, expiry and type of a refresh token.
func ParseRefreshToken(secret, raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parse(secret, raw, claims); err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeRefresh || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NewStateToken returns a signed OAuth state value and the nonce it wraps.
// The nonce is also stored in a cookie so the callback can check that the
// state came back to the same browser.
func NewStateToken(secret string, ttl time.Duration) (state, nonce string, err error) {
	nonce, err = randomHex(16)
	if err != nil {
		return "", "", err
	}
	now := time.Now().UTC()
	state, err = sign(secret, stateClaims{
		Nonce: nonce,
		Type:  tokenTypeState,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	if err != nil {
		return "", "", err
	}
	return state, nonce, nil
}

// VerifyStateToken checks a state value and returns its nonce.
func VerifyStateToken(secret, state string) (string, error) {
	claims := &stateClaims{}
	if err := parse(secret, state, claims); err != nil {
		return "", err
	}
	if claims.Type != tokenTypeState || claims.Nonce == "" {
		return "", ErrInvalidToken
	}
	return claims.Nonce, nil
}

// HashRefreshRaw returns the SHA-256 hash of a refresh token as hex.  Only
// this digest reaches the database.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func sign(secret string, claims jwt.Claims) (string, error) {
	if secret == "" {
		return "", errors.New("signing key unavailable")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parse(secret, raw string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject anything that is not HMAC, e.g. alg=none or RS256 with a
		// public key passed off as the secret.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}

// randomHex returns a hex string built from n bytes of crypto/rand data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
