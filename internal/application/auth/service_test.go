package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialhub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserCreator struct{ mock.Mock }

func (m *mockUserCreator) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) Disable(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) GetByUUID(ctx context.Context, uuid string) (*domain.Device, error) {
	args := m.Called(ctx, uuid)
	if d, _ := args.Get(0).(*domain.Device); d != nil {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) Put(ctx context.Context, d *domain.Device) error {
	return m.Called(ctx, d).Error(0)
}

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, deviceID, role, sessionID string) (string, error) {
	args := m.Called(userID, deviceID, role, sessionID)
	return args.String(0), args.Error(1)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Issue(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

// --- helpers ---

type mocks struct {
	users    *mockUserCreator
	userRepo *mockUserStore
	sessions *mockSessionStore
	devices  *mockDeviceStore
	profiles *mockProfileStore
	jwt      *mockJWTSigner
	otp      *mockIssuer
}

func newSvc() (Service, *mocks) {
	m := &mocks{
		users:    &mockUserCreator{},
		userRepo: &mockUserStore{},
		sessions: &mockSessionStore{},
		devices:  &mockDeviceStore{},
		profiles: &mockProfileStore{},
		jwt:      &mockJWTSigner{},
		otp:      &mockIssuer{},
	}
	svc := NewService(ServiceDeps{
		Users:           m.users,
		UserRepo:        m.userRepo,
		SessionRepo:     m.sessions,
		DeviceRepo:      m.devices,
		ProfileRepo:     m.profiles,
		JWTProvider:     m.jwt,
		OTP:             m.otp,
		RefreshTokenDur: 24 * time.Hour,
	})
	return svc, m
}

// expectSession wires the device, session and signer mocks for a fresh session.
func (m *mocks) expectSession(userID, role string) {
	m.devices.On("Put", mock.Anything, mock.AnythingOfType("*domain.Device")).Return(nil)
	m.sessions.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	m.jwt.On("Sign", userID, mock.Anything, role, mock.Anything).Return("bearer-token", nil)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- Register ---

func TestRegister_IssuesCodeAndOpensSession(t *testing.T) {
	svc, m := newSvc()
	u := &domain.User{UserID: "u1", Role: domain.RoleUser, Enable: 1}
	req := domain.CreateUserRequest{Username: "alice", Email: "a@x.io", Password: "password123"}
	m.users.On("Create", mock.Anything, req).Return(u, nil)
	m.expectSession("u1", domain.RoleUser)
	m.otp.On("Issue", mock.Anything, u).Return(nil).Once()

	res, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", res.Bearer)
	assert.Len(t, res.RefreshToken, 64)
	assert.True(t, res.Session.Enable)
	assert.Equal(t, u, res.Session.User)
	m.otp.AssertExpectations(t)
}

func TestRegister_DeliveryFailureStillSucceeds(t *testing.T) {
	svc, m := newSvc()
	u := &domain.User{UserID: "u1", Role: domain.RoleUser}
	m.users.On("Create", mock.Anything, mock.Anything).Return(u, nil)
	m.expectSession("u1", domain.RoleUser)
	m.otp.On("Issue", mock.Anything, u).Return(errors.New("smtp down"))

	res, err := svc.Register(context.Background(), domain.CreateUserRequest{})
	require.NoError(t, err)
	assert.NotNil(t, res.Session)
}

func TestRegister_Conflict(t *testing.T) {
	svc, m := newSvc()
	m.users.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	_, err := svc.Register(context.Background(), domain.CreateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
	m.otp.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

// --- Login ---

func TestLogin_ByEmail(t *testing.T) {
	svc, m := newSvc()
	u := &domain.User{UserID: "u1", Role: domain.RoleUser, Enable: 1, PasswordHash: hashed(t, "secret123")}
	m.userRepo.On("GetByEmail", mock.Anything, "a@x.io").Return(u, nil)
	m.expectSession("u1", domain.RoleUser)

	res, err := svc.Login(context.Background(), LoginRequest{Login: "a@x.io", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer-token", res.Bearer)
	m.userRepo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestLogin_ByUsername_ReusesKnownDevice(t *testing.T) {
	svc, m := newSvc()
	u := &domain.User{UserID: "u1", Role: domain.RoleAdmin, Enable: 1, PasswordHash: hashed(t, "secret123")}
	m.userRepo.On("GetByUsername", mock.Anything, "alice").Return(u, nil)
	m.devices.On("GetByUUID", mock.Anything, "dev-uuid").Return(&domain.Device{DeviceID: "d1"}, nil)
	m.sessions.On("Put", mock.Anything, mock.Anything).Return(nil)
	m.jwt.On("Sign", "u1", "d1", domain.RoleAdmin, mock.Anything).Return("tok", nil)

	uuid := "dev-uuid"
	res, err := svc.Login(context.Background(), LoginRequest{Login: "alice", Password: "secret123", DeviceUUID: &uuid})
	require.NoError(t, err)
	assert.Equal(t, "d1", res.Session.DeviceID)
	m.devices.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, m := newSvc()
	u := &domain.User{UserID: "u1", Enable: 1, PasswordHash: hashed(t, "secret123")}
	m.userRepo.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Login: "alice", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, m := newSvc()
	m.userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{Login: "ghost", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, m := newSvc()
	u := &domain.User{UserID: "u1", Enable: 0, PasswordHash: hashed(t, "secret123")}
	m.userRepo.On("GetByUsername", mock.Anything, "alice").Return(u, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Login: "alice", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// --- Refresh ---

func TestRefresh_RotatesToken(t *testing.T) {
	svc, m := newSvc()
	sess := &domain.Session{SessionID: "s1", UserID: "u1", DeviceID: "d1", Enable: true, RefreshExpiresAt: time.Now().Add(time.Hour).Unix()}
	m.sessions.On("GetByRefreshToken", mock.Anything, "old").Return(sess, nil)
	m.userRepo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleUser}, nil)
	m.sessions.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).Return(nil)
	m.jwt.On("Sign", "u1", "d1", domain.RoleUser, "s1").Return("new-bearer", nil)

	res, err := svc.Refresh(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "new-bearer", res.Bearer)
	assert.NotEqual(t, "old", res.RefreshToken)
	assert.Equal(t, res.RefreshToken, res.Session.RefreshToken)
}

func TestRefresh_Expired(t *testing.T) {
	svc, m := newSvc()
	sess := &domain.Session{SessionID: "s1", UserID: "u1", Enable: true, RefreshExpiresAt: time.Now().Add(-time.Minute).Unix()}
	m.sessions.On("GetByRefreshToken", mock.Anything, "old").Return(sess, nil)

	_, err := svc.Refresh(context.Background(), "old")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	m.sessions.AssertNotCalled(t, "RotateRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_UnknownToken(t *testing.T) {
	svc, m := newSvc()
	m.sessions.On("GetByRefreshToken", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, err := svc.Refresh(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// --- Logout / SessionActive ---

func TestLogout_DisablesSession(t *testing.T) {
	svc, m := newSvc()
	m.sessions.On("Disable", mock.Anything, "s1").Return(nil)

	require.NoError(t, svc.Logout(context.Background(), "s1"))
	m.sessions.AssertExpectations(t)
}

func TestSessionActive(t *testing.T) {
	svc, m := newSvc()
	m.sessions.On("Get", mock.Anything, "live").Return(&domain.Session{Enable: true}, nil)
	m.sessions.On("Get", mock.Anything, "dead").Return(&domain.Session{Enable: false}, nil)
	m.sessions.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	ok, err := svc.SessionActive(context.Background(), "live")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = svc.SessionActive(context.Background(), "dead")
	assert.False(t, ok)
	ok, err = svc.SessionActive(context.Background(), "gone")
	require.NoError(t, err)
	assert.False(t, ok)
}

// --- Current ---

func TestCurrent_WithoutProfile(t *testing.T) {
	svc, m := newSvc()
	m.userRepo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	m.profiles.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	u, p, err := svc.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Nil(t, p)
}

// --- ResendCode ---

func TestResendCode_AlreadyVerified(t *testing.T) {
	svc, m := newSvc()
	now := time.Now()
	m.userRepo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", VerifiedAt: &now}, nil)

	sent, err := svc.ResendCode(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, sent)
	m.otp.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestResendCode_Issues(t *testing.T) {
	svc, m := newSvc()
	u := &domain.User{UserID: "u1"}
	m.userRepo.On("Get", mock.Anything, "u1").Return(u, nil)
	m.otp.On("Issue", mock.Anything, u).Return(nil)

	sent, err := svc.ResendCode(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestResendCode_DeliveryError(t *testing.T) {
	svc, m := newSvc()
	u := &domain.User{UserID: "u1"}
	m.userRepo.On("Get", mock.Anything, "u1").Return(u, nil)
	m.otp.On("Issue", mock.Anything, u).Return(errors.New("smtp down"))

	sent, err := svc.ResendCode(context.Background(), "u1")
	assert.Error(t, err)
	assert.False(t, sent)
}
