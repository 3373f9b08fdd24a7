package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dataloft-systems/dataloft-backend/internal/models"
	"github.com/dataloft-systems/dataloft-backend/internal/permissions"
	"github.com/dataloft-systems/dataloft-backend/pkg/tokens"
)

type contextKey string

const ClaimsKey contextKey = "claims"

type AuthMiddleware struct {
	codec *tokens.Codec
}

func NewAuthMiddleware(codec *tokens.Codec) *AuthMiddleware {
	return &AuthMiddleware{codec: codec}
}

// RequireAuth verifies the Bearer access token and stores its claims in the
// request context.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.codec.ParseAccessToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireAdmin is RequireAuth plus an admin role check.
func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil || !permissions.IsAdmin(models.Role(claims.Role)) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireManager is RequireAuth plus a manager-or-admin role check.
func (m *AuthMiddleware) RequireManager(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil || !permissions.IsManagerOrAbove(models.Role(claims.Role)) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaims returns the verified token claims, or nil outside RequireAuth.
func GetClaims(ctx context.Context) *tokens.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*tokens.Claims)
	return claims
}
