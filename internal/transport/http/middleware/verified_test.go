package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/socialhub-api/internal/domain"
	jwtinfra "github.com/socialhub-api/internal/infrastructure/jwt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

type stubUsers map[string]*domain.User

func (s stubUsers) Get(_ context.Context, userID string) (*domain.User, error) {
	if userID == "broken" {
		return nil, errors.New("dynamo down")
	}
	if u, ok := s[userID]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func requestAs(userID string) *http.Request {
	claims := &jwtinfra.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(WithClaims(req.Context(), claims))
}

func TestRequireVerified(t *testing.T) {
	now := time.Now()
	users := stubUsers{
		"verified":   {UserID: "verified", VerifiedAt: &now},
		"unverified": {UserID: "unverified"},
	}
	tests := []struct {
		name   string
		userID string
		want   int
	}{
		{"verified user passes", "verified", http.StatusOK},
		{"unverified user is forbidden", "unverified", http.StatusForbidden},
		{"unknown user", "ghost", http.StatusUnauthorized},
		{"store failure", "broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RequireVerified(users)(http.HandlerFunc(okHandler)).ServeHTTP(rr, requestAs(tt.userID))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequireVerified_NoClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireVerified(stubUsers{})(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
