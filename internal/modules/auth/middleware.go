package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hakimbenali/mizan-backend/internal/web"
)

type contextKey string

const claimsKey contextKey = "auth.claims"

// Protect rejects requests without a valid bearer token and stores the
// verified claims on the request context.
func Protect(service Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				web.FailStatus(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := service.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				web.FailStatus(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the verified claims Protect stored, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
