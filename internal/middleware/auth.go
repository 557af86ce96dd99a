package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/billun/fleetcore/internal/domain/user"
)

// TokenValidator verifies an access token and returns its claims.
// *service.AuthService satisfies this.
type TokenValidator interface {
	ValidateAccessToken(token string) (*user.TokenClaims, error)
}

type authUserCtxKey struct{}

// publicPaths are exempt from authentication.
var publicPaths = map[string]bool{
	"/health":              true,
	"/api/v1/auth/login":   true,
	"/api/v1/auth/refresh": true,
}

// Auth returns middleware that validates JWT credentials and injects the
// authenticated user into the request context.
func Auth(authSvc TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for public paths.
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := authSvc.ValidateAccessToken(token)
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusUnauthorized)
				return
			}

			u := &user.User{
				ID:        claims.UserID,
				Email:     claims.Email,
				Name:      claims.Name,
				Role:      claims.Role,
				CompanyID: claims.CompanyID,
				Enabled:   true,
			}

			ctx := context.WithValue(r.Context(), authUserCtxKey{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user from the request context.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(authUserCtxKey{}).(*user.User)
	return u
}

// WithUser returns a context carrying the given user. Exported for handler
// tests that need to inject an authenticated user.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, authUserCtxKey{}, u)
}
