package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{Secret: "test-secret", AccessTTL: 15 * time.Minute, RefreshTTL: 30 * 24 * time.Hour}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testTokenConfig()
	before := time.Now().UTC()

	tok, err := NewAccessToken(cfg, 42, "alice@x.com")
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if d := tok.Exp.Sub(before); d < 14*time.Minute || d > 16*time.Minute {
		t.Errorf("access expiry %s from now, want about 15m", d)
	}

	claims, err := ParseAccessToken(cfg.Secret, tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "alice@x.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cfg := testTokenConfig()

	a, err := NewRefreshToken(cfg, 7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	b, err := NewRefreshToken(cfg, 7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if a.Raw == b.Raw {
		t.Error("two refresh tokens for the same user should differ")
	}
	if d := time.Until(a.Exp); d < 29*24*time.Hour {
		t.Errorf("refresh expiry %s from now, want about 30 days", d)
	}

	claims, err := ParseRefreshToken(cfg.Secret, a.Raw)
	if err != nil {
		t.Fatalf("ParseRefreshToken: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claims.UserID)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	secret := "test-secret"
	claims := AccessClaims{
		UserID: 1,
		Email:  "a@x.com",
		Type:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Second)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(secret, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsWrongSecretAndType(t *testing.T) {
	cfg := testTokenConfig()
	access, _ := NewAccessToken(cfg, 1, "a@x.com")
	refresh, _ := NewRefreshToken(cfg, 1)

	tests := []struct {
		name  string
		parse func() error
	}{
		{"wrong secret", func() error { _, err := ParseAccessToken("other", access.Token); return err }},
		{"refresh used as access", func() error { _, err := ParseAccessToken(cfg.Secret, refresh.Raw); return err }},
		{"access used as refresh", func() error { _, err := ParseRefreshToken(cfg.Secret, access.Token); return err }},
		{"garbage", func() error { _, err := ParseAccessToken(cfg.Secret, "not-a-jwt"); return err }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.parse(); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	claims := AccessClaims{
		UserID: 1,
		Type:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken("test-secret", raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSigningKeyUnavailable(t *testing.T) {
	if _, err := NewAccessToken(TokenConfig{AccessTTL: time.Minute}, 1, "a@x.com"); err == nil {
		t.Fatal("expected error without a secret")
	}
}

func TestStateToken(t *testing.T) {
	state, nonce, err := NewStateToken("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewStateToken: %v", err)
	}
	got, err := VerifyStateToken("test-secret", state)
	if err != nil {
		t.Fatalf("VerifyStateToken: %v", err)
	}
	if got != nonce {
		t.Errorf("nonce = %q, want %q", got, nonce)
	}
	access, _ := NewAccessToken(testTokenConfig(), 1, "a@x.com")
	if _, err := VerifyStateToken("test-secret", access.Token); err == nil {
		t.Error("access token must not verify as state")
	}
}

func TestHashRefreshRaw(t *testing.T) {
	h := HashRefreshRaw("abc")
	if len(h) != 64 {
		t.Fatalf("hash length = %d, want 64", len(h))
	}
	if h != HashRefreshRaw("abc") || h == HashRefreshRaw("abd") {
		t.Error("hash must be deterministic and input-sensitive")
	}
}
