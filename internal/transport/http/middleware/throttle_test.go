package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/socialhub-api/internal/infrastructure/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestThrottle_RedisWindowPerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	h := Throttle(redis.NewLimiter(client, 6, time.Minute, ""), "resend")(http.HandlerFunc(okHandler))

	for i := 0; i < 6; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, requestAs("u1"))
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, requestAs("u1"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, requestAs("u2"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestThrottle_FailsOpen(t *testing.T) {
	rr := httptest.NewRecorder()
	Throttle(failingLimiter{}, "resend")(http.HandlerFunc(okHandler)).ServeHTTP(rr, requestAs("u1"))
	assert.Equal(t, http.StatusOK, rr.Code)
}
