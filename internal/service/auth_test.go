package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/billun/fleetcore/internal/config"
	"github.com/billun/fleetcore/internal/domain/user"
)

func newTestAuthService(store *mockStore) *AuthService {
	cfg := config.Auth{
		JWTSecret:          "test-secret-key-must-be-long-enough",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		BcryptCost:         4, // low cost for fast tests
	}
	return NewAuthService(store, &cfg)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	u, err := svc.Register(ctx, &user.CreateRequest{
		Email:     "test@example.com",
		Name:      "Test User",
		Password:  "Password123",
		Role:      user.RoleManager,
		CompanyID: "comp-a",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.CompanyID != "comp-a" {
		t.Errorf("company = %q, want comp-a", u.CompanyID)
	}
	if u.PasswordHash == "Password123" {
		t.Error("password stored in clear")
	}

	resp, rawRefresh, err := svc.Login(ctx, user.LoginRequest{
		Email:    "test@example.com",
		Password: "Password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("access token is empty")
	}
	if rawRefresh == "" {
		t.Error("refresh token is empty")
	}
}

func TestAuthService_InvalidLogin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, &user.CreateRequest{
		Email:     "test@example.com",
		Name:      "Test",
		Password:  "Password123",
		Role:      user.RoleOperator,
		CompanyID: "comp-a",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, user.LoginRequest{
		Email:    "test@example.com",
		Password: "wrongpassword",
	}); err == nil {
		t.Fatal("expected error for wrong password")
	}

	if _, _, err := svc.Login(ctx, user.LoginRequest{
		Email:    "nobody@example.com",
		Password: "Password123",
	}); err == nil {
		t.Fatal("expected error for non-existent user")
	}
}

func TestAuthService_DisabledAccountCannotLogin(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	u, err := svc.Register(ctx, &user.CreateRequest{
		Email:     "temp@acme.example",
		Name:      "Temp Contact",
		Password:  "Password123",
		Role:      user.RoleManager,
		CompanyID: "comp-acme",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	u.Enabled = false
	if err := store.UpdateUser(ctx, u); err != nil {
		t.Fatalf("disable user: %v", err)
	}

	if _, _, err := svc.Login(ctx, user.LoginRequest{
		Email:    "temp@acme.example",
		Password: "Password123",
	}); err == nil {
		t.Fatal("expected error for disabled account")
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &user.CreateRequest{
		Email:     "jwt@example.com",
		Name:      "JWT User",
		Password:  "Password123",
		Role:      user.RoleAdmin,
		CompanyID: "comp-a",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, _, err := svc.Login(ctx, user.LoginRequest{
		Email:    "jwt@example.com",
		Password: "Password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Email != "jwt@example.com" {
		t.Errorf("claims email = %q", claims.Email)
	}
	if claims.CompanyID != "comp-a" {
		t.Errorf("claims company = %q", claims.CompanyID)
	}
	if claims.Role != user.RoleAdmin {
		t.Errorf("claims role = %q", claims.Role)
	}

	// Tampered signature must be rejected.
	parts := strings.Split(resp.AccessToken, ".")
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]
	if _, err := svc.ValidateAccessToken(tampered); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestAuthService_RefreshRotation(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &user.CreateRequest{
		Email:     "rot@example.com",
		Name:      "Rotate",
		Password:  "Password123",
		Role:      user.RoleManager,
		CompanyID: "comp-a",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, rawRefresh, err := svc.Login(ctx, user.LoginRequest{
		Email:    "rot@example.com",
		Password: "Password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, newRaw, err := svc.RefreshTokens(ctx, rawRefresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == "" || newRaw == "" {
		t.Fatal("refresh returned empty tokens")
	}
	if newRaw == rawRefresh {
		t.Error("refresh token not rotated")
	}

	// The old token is consumed by the rotation.
	if _, _, err := svc.RefreshTokens(ctx, rawRefresh); err == nil {
		t.Error("stale refresh token accepted")
	}
}

func TestAuthService_LogoutInvalidatesRefreshTokens(t *testing.T) {
	store := &mockStore{}
	svc := newTestAuthService(store)
	ctx := context.Background()

	u, err := svc.Register(ctx, &user.CreateRequest{
		Email:     "out@example.com",
		Name:      "Out",
		Password:  "Password123",
		Role:      user.RoleManager,
		CompanyID: "comp-a",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, rawRefresh, err := svc.Login(ctx, user.LoginRequest{
		Email:    "out@example.com",
		Password: "Password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, u.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := svc.RefreshTokens(ctx, rawRefresh); err == nil {
		t.Error("refresh token survived logout")
	}
}
