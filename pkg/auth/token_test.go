package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/config"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret: "secret",
		Issuer: "agrilink",
	}
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenClaims{
		UserID:   userID,
		Role:     enums.UserRoleFarmer,
		Email:    "farmer@example.com",
		FullName: "Nimal Perera",
	}, 30*time.Minute)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleFarmer {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.Email != "farmer@example.com" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp.UTC(), claims.ExpiresAt.UTC())
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "agrilink"}
	now := time.Now()

	token, err := MintAccessToken(cfg, now, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.UserRoleBuyer,
	}, 10*time.Minute)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := config.JWTConfig{Secret: "different", Issuer: "agrilink"}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseAccessTokenWrongIssuer(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "agrilink"}
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
	}, 10*time.Minute)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	verify := config.JWTConfig{Secret: "secret", Issuer: "someone-else"}
	if _, err := ParseAccessToken(verify, token); err == nil {
		t.Fatal("expected issuer validation to fail")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "agrilink"}
	past := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, past, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.UserRoleDriver,
	}, time.Minute)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestMintAccessTokenRejectsInvalidRole(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "agrilink"}
	_, err := MintAccessToken(cfg, time.Now(), AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.UserRole("manager"),
	}, time.Minute)
	if err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
}
