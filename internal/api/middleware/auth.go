package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"truetime.service/internal/core/model"
)

type contextKey string

const claimsContextKey contextKey = "authClaims"

// Claims is the token payload issued at login. Subject carries the
// user's email.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ClaimsFromContext returns the verified claims for the request, or nil
// when the request did not pass through Authenticate.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

// Authenticate verifies the bearer token and stores its claims on the
// request context. Requests without a valid token get 401.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles wraps a handler and rejects callers whose role is not in
// the allow list. An empty list admits any authenticated caller.
func RequireRoles(roles ...model.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}

			if len(roles) > 0 {
				role, err := model.RoleFromString(claims.Role)
				if err != nil {
					http.Error(w, "Insufficient permissions", http.StatusForbidden)
					return
				}
				allowed := false
				for _, want := range roles {
					if role == want {
						allowed = true
						break
					}
				}
				if !allowed {
					http.Error(w, "Insufficient permissions", http.StatusForbidden)
					return
				}
			}

			next(w, r)
		}
	}
}
