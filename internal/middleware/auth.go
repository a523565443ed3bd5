package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/veyra-io/docflowgo/internal/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// Auth returns a middleware that verifies JWT tokens. The acting user's
// claims are resolved once here and placed on the request context; engine
// calls receive the user id as an explicit argument, never ambient state.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			// Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(parts[1], jwtSecret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Claims extracts the JWT claims stored by Auth, nil when absent
func Claims(r *http.Request) jwt.MapClaims {
	claims, _ := r.Context().Value(UserContextKey).(jwt.MapClaims)
	return claims
}

// UserID returns the authenticated user's id, "" when unauthenticated
func UserID(r *http.Request) string {
	claims := Claims(r)
	if claims == nil {
		return ""
	}
	id, _ := claims["id"].(string)
	return id
}

// IsAdmin reports whether the authenticated user carries the admin role
func IsAdmin(r *http.Request) bool {
	claims := Claims(r)
	if claims == nil {
		return false
	}
	role, _ := claims["role"].(string)
	return role == "admin"
}
