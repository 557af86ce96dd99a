package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billun/fleetcore/internal/domain/user"
)

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RequireRole(user.RoleAdmin, user.RoleManager)(next)

	tests := []struct {
		name string
		user *user.User
		want int
	}{
		{"admin allowed", &user.User{ID: "u1", Role: user.RoleAdmin}, http.StatusOK},
		{"manager allowed", &user.User{ID: "u2", Role: user.RoleManager}, http.StatusOK},
		{"operator forbidden", &user.User{ID: "u3", Role: user.RoleOperator}, http.StatusForbidden},
		{"no user", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/partnerships/invite", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
