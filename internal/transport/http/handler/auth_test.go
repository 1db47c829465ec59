package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/socialhub-api/internal/application/auth"
	"github.com/socialhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) result(args mock.Arguments) (*auth.Result, error) {
	if res, _ := args.Get(0).(*auth.Result); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthSvc) Register(ctx context.Context, req domain.CreateUserRequest) (*auth.Result, error) {
	return m.result(m.Called(ctx, req))
}
func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*auth.Result, error) {
	return m.result(m.Called(ctx, req))
}
func (m *mockAuthSvc) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}
func (m *mockAuthSvc) Refresh(ctx context.Context, refreshToken string) (*auth.Result, error) {
	return m.result(m.Called(ctx, refreshToken))
}
func (m *mockAuthSvc) Current(ctx context.Context, userID string) (*domain.User, *domain.Profile, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	p, _ := args.Get(1).(*domain.Profile)
	return u, p, args.Error(2)
}
func (m *mockAuthSvc) ResendCode(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *mockAuthSvc) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func TestRegister_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthSvc{}, &mockUserSvc{})
	r := httptest.NewRequest(http.MethodPost, "/v1/register", strings.NewReader("not-json"))
	rr := httptest.NewRecorder()
	h.Register(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_HappyPath(t *testing.T) {
	svc := &mockAuthSvc{}
	sess := &domain.Session{SessionID: "s1", UserID: "u1", User: &domain.User{UserID: "u1", Username: "alice"}}
	svc.On("Register", mock.Anything, mock.Anything).Return(&auth.Result{Bearer: "jwt", RefreshToken: "rt", Session: sess}, nil)
	h := NewAuthHandler(svc, &mockUserSvc{})
	body := mustJSON(t, domain.CreateUserRequest{Username: "alice", Password: "secret123", Email: "alice@example.com"})

	r := httptest.NewRequest(http.MethodPost, "/v1/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var payload AuthPayload
	decodeEnvelope(t, rr, &payload)
	assert.Equal(t, "jwt", payload.Bearer)
	assert.Equal(t, "rt", payload.RefreshToken)
	assert.Equal(t, "alice", payload.Session.User.Username)
	assert.NotContains(t, rr.Body.String(), "password_hash")
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, auth.LoginRequest{Login: "alice", Password: "wrong"}).
		Return(nil, domain.ErrUnauthorized)
	h := NewAuthHandler(svc, &mockUserSvc{})

	r := httptest.NewRequest(http.MethodPost, "/v1/login", bytes.NewReader(mustJSON(t, auth.LoginRequest{Login: "alice", Password: "wrong"})))
	rr := httptest.NewRecorder()
	h.Login(rr, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefresh_RejectsMalformedToken(t *testing.T) {
	svc := &mockAuthSvc{}
	h := NewAuthHandler(svc, &mockUserSvc{})

	r := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", strings.NewReader(`{"refresh_token":"short"}`))
	rr := httptest.NewRecorder()
	h.Refresh(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestLogout_DisablesTokenSession(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAuthSvc{}
	svc.On("Logout", mock.Anything, "sess1").Return(nil)
	h := NewAuthHandler(svc, &mockUserSvc{})

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Logout), rr, bearerReq(t, p, http.MethodPost, "/v1/logout", "u1", domain.RoleUser, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestCurrent_IncludesProfile(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAuthSvc{}
	bio := "hi"
	svc.On("Current", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Username: "alice"}, &domain.Profile{UserID: "u1", Bio: &bio}, nil)
	h := NewAuthHandler(svc, &mockUserSvc{})

	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Current), rr, bearerReq(t, p, http.MethodGet, "/v1/user", "u1", domain.RoleUser, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got map[string]interface{}
	decodeEnvelope(t, rr, &got)
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "hi", got["profile"].(map[string]interface{})["bio"])
}

func TestChangePassword(t *testing.T) {
	p := newTestJWTProvider(t)
	users := &mockUserSvc{}
	users.On("ChangePassword", mock.Anything, "u1", "old-secret", "new-secret").Return(nil)
	h := NewAuthHandler(&mockAuthSvc{}, users)

	body := []byte(`{"current_password":"old-secret","new_password":"new-secret"}`)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.ChangePassword), rr, bearerReq(t, p, http.MethodPut, "/v1/user/password", "u1", domain.RoleUser, body))

	assert.Equal(t, http.StatusOK, rr.Code)
	users.AssertExpectations(t)
}
