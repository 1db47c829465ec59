package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	jwtinfra "github.com/socialhub-api/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// SessionChecker reports whether the session a token was issued for is still open.
type SessionChecker interface {
	SessionActive(ctx context.Context, sessionID string) (bool, error)
}

// Auth returns middleware that validates the Bearer JWT and injects claims
// into the context. With a non-nil sessions, tokens of closed sessions are
// rejected too.
func Auth(tokens TokenVerifier, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}
			claims, err := tokens.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}
			if sessions != nil {
				active, err := sessions.SessionActive(r.Context(), claims.SessionID)
				if err != nil {
					slog.Error("session lookup failed", "session_id", claims.SessionID, "err", err)
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				if !active {
					writeJSONError(w, http.StatusUnauthorized, "Unauthenticated.")
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying c.
func WithClaims(ctx context.Context, c *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}
