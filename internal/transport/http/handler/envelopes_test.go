package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socialhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHTTPError_Mapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrBadRequest), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("x: %w", domain.ErrForbidden), http.StatusForbidden},
		{domain.ErrUnverified, http.StatusForbidden},
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrConflict), http.StatusConflict},
		{domain.ErrAlreadyVerified, http.StatusConflict},
		{errors.New("dynamo exploded"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		httpError(rr, tt.err)
		assert.Equal(t, tt.want, rr.Code, tt.err.Error())
	}
}

func TestHTTPError_HidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	httpError(rr, errors.New("table users: AccessDenied"))
	assert.NotContains(t, rr.Body.String(), "AccessDenied")
	assert.Contains(t, rr.Body.String(), `"success":false`)
}

func TestParsePage(t *testing.T) {
	p := parsePage(httptest.NewRequest(http.MethodGet, "/?page=-3&per_page=500&cursor=c", nil), 10)
	assert.Equal(t, page{number: 1, limit: 10, cursor: "c"}, p)

	p = parsePage(httptest.NewRequest(http.MethodGet, "/?page=3&per_page=25", nil), 10)
	assert.Equal(t, page{number: 3, limit: 25}, p)
}

func TestPing(t *testing.T) {
	h := NewHealthHandler()

	rr := httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil), "action", "ping"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", decodeEnvelope(t, rr, nil).Message)

	rr = httptest.NewRecorder()
	h.Ping(rr, withChiParam(httptest.NewRequest(http.MethodGet, "/v1/health-check/dance", nil), "action", "dance"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
