package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/socialhub-api/internal/pkg/metrics"
)

// WindowLimiter counts hits per key. The Redis limiter and RateLimiter both satisfy it.
type WindowLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// Throttle limits requests per authenticated user, falling back to the client
// IP when no claims are present. A limiter error lets the request through.
func Throttle(limiter WindowLimiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + realIP(r)
			if claims, ok := ClaimsFromContext(r.Context()); ok {
				key = "user:" + claims.UserID()
			}
			allowed, retryAfter, err := limiter.Allow(r.Context(), name+":"+key)
			if err != nil {
				slog.Warn("rate limiter unavailable", "limiter", name, "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.RateLimited.WithLabelValues(name).Inc()
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeJSONError(w, http.StatusTooManyRequests, "Too Many Attempts.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
