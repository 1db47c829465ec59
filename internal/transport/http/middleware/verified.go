package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/socialhub-api/internal/domain"
)

// UserGetter loads the account behind a token.
type UserGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// RequireVerified lets through only users who completed email verification.
// It must run after Auth.
func RequireVerified(users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}
			u, err := users.Get(r.Context(), claims.UserID())
			if errors.Is(err, domain.ErrNotFound) {
				writeJSONError(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}
			if err != nil {
				slog.Error("load user for verification check failed", "user_id", claims.UserID(), "err", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !u.Verified() {
				writeJSONError(w, http.StatusForbidden, "Your email address is not verified.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
