package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billun/fleetcore/internal/domain/user"
)

type stubValidator struct {
	claims *user.TokenClaims
	err    error
}

func (s stubValidator) ValidateAccessToken(string) (*user.TokenClaims, error) {
	return s.claims, s.err
}

func echoUserHandler(t *testing.T, wantCompany string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if u == nil {
			t.Error("no user in context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if u.CompanyID != wantCompany {
			t.Errorf("company = %q, want %q", u.CompanyID, wantCompany)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	v := stubValidator{claims: &user.TokenClaims{
		UserID:    "u-1",
		Email:     "a@example.com",
		Role:      user.RoleManager,
		CompanyID: "comp-a",
	}}
	mw := Auth(v)(echoUserHandler(t, "comp-a"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/partnerships", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuth_RejectsMissingAndMalformedHeaders(t *testing.T) {
	v := stubValidator{err: errors.New("invalid signature")}
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler reached without valid auth")
	})
	mw := Auth(v)(next)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"invalid token", "Bearer bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAuth_PublicPathsSkipAuth(t *testing.T) {
	v := stubValidator{err: errors.New("should not be called")}
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	mw := Auth(v)(next)

	for _, path := range []string{"/health", "/api/v1/auth/login", "/api/v1/auth/refresh"} {
		reached = false
		req := httptest.NewRequest(http.MethodPost, path, nil)
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		if !reached {
			t.Errorf("%s: handler not reached without credentials", path)
		}
	}
}
