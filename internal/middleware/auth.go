package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/saffron-pos/api/internal/auth"
	"github.com/saffron-pos/api/internal/policy"
)

type contextKey string

const claimsKey contextKey = "claims"

func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// ActorFromContext resolves the authenticated staff identity for policy
// checks. Returns nil when the request is unauthenticated.
func ActorFromContext(ctx context.Context) *policy.Actor {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return nil
	}
	return &policy.Actor{
		ID:          claims.UserID,
		Username:    claims.Username,
		Role:        claims.Role,
		IsSuperuser: claims.IsSuperuser,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
