package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/auth"
	"github.com/ruwinya10/agrilink-backend/pkg/config"
	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
)

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	handler := Auth(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	handler := Auth(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsContextAndMirrorsPrincipal(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	userID := uuid.New()
	token := mintTestToken(t, cfg, userID, enums.UserRoleFarmer)

	mirror := &stubUserMirror{}
	var captured struct {
		user  string
		role  string
		email string
	}
	handler := Auth(cfg, mirror, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.email = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, captured.user)
	}
	if captured.role != string(enums.UserRoleFarmer) {
		t.Fatalf("expected role farmer got %s", captured.role)
	}
	if captured.email != "farmer@example.com" {
		t.Fatalf("expected email in context, got %q", captured.email)
	}
	if mirror.upserted == nil || mirror.upserted.ID != userID {
		t.Fatal("expected principal mirrored into users table")
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	claims := auth.AccessTokenClaims{
		UserID:   uuid.New(),
		Role:     enums.UserRoleBuyer,
		Email:    "buyer@example.com",
		FullName: "B. Buyer",
	}
	token, err := auth.MintAccessToken(cfg, time.Now().Add(-2*time.Hour), claims, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	handler := Auth(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID, role enums.UserRole) string {
	t.Helper()
	claims := auth.AccessTokenClaims{
		UserID:   userID,
		Role:     role,
		Email:    "farmer@example.com",
		FullName: "F. Farmer",
	}
	token, err := auth.MintAccessToken(cfg, time.Now(), claims, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

func TestAuthMirrorDuplicateEmailConflicts(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	token := mintTestToken(t, cfg, uuid.New(), enums.UserRoleBuyer)

	mirror := &stubUserMirror{err: errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`)}
	handler := Auth(cfg, mirror, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate mirrored email, got %d", resp.Code)
	}
}

func TestAuthMirrorFailureIsDependencyError(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer"}
	token := mintTestToken(t, cfg, uuid.New(), enums.UserRoleBuyer)

	mirror := &stubUserMirror{err: errors.New("connection refused")}
	handler := Auth(cfg, mirror, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the mirror is down, got %d", resp.Code)
	}
}

type stubUserMirror struct {
	upserted *models.User
	err      error
}

func (s *stubUserMirror) Upsert(ctx context.Context, user *models.User) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = user
	return nil
}
