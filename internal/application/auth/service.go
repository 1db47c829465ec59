package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/socialhub-api/internal/domain"
	pkgdevice "github.com/socialhub-api/internal/pkg/device"
	"github.com/socialhub-api/internal/pkg/id"
	pkgtoken "github.com/socialhub-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

// LoginRequest accepts either an email address or a username in Login.
type LoginRequest struct {
	Login      string  `json:"login" validate:"required,max=255"`
	Password   string  `json:"password" validate:"required"`
	DeviceUUID *string `json:"device_uuid"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,hexadecimal,len=64"`
}

// Result is what a client receives after authenticating.
type Result struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	// Register creates the account, opens a session and sends the first
	// verification code. A failed send does not fail registration.
	Register(ctx context.Context, req domain.CreateUserRequest) (*Result, error)
	Login(ctx context.Context, req LoginRequest) (*Result, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, refreshToken string) (*Result, error)
	// Current returns the user and, when one exists, their profile.
	Current(ctx context.Context, userID string) (*domain.User, *domain.Profile, error)
	// ResendCode issues a fresh code. It reports false when the user is
	// already verified and nothing was sent.
	ResendCode(ctx context.Context, userID string) (bool, error)
	SessionActive(ctx context.Context, sessionID string) (bool, error)
}

type userCreator interface {
	Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type jwtSigner interface {
	Sign(userID, deviceID, role, sessionID string) (string, error)
}

type codeIssuer interface {
	Issue(ctx context.Context, u *domain.User) error
}

type ServiceDeps struct {
	Users           userCreator
	UserRepo        userStore
	SessionRepo     sessionStore
	DeviceRepo      pkgdevice.Store
	ProfileRepo     profileStore
	JWTProvider     jwtSigner
	OTP             codeIssuer
	RefreshTokenDur time.Duration
}

type service struct {
	users           userCreator
	userRepo        userStore
	sessionRepo     sessionStore
	deviceRepo      pkgdevice.Store
	profileRepo     profileStore
	jwtProvider     jwtSigner
	otp             codeIssuer
	refreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:           deps.Users,
		userRepo:        deps.UserRepo,
		sessionRepo:     deps.SessionRepo,
		deviceRepo:      deps.DeviceRepo,
		profileRepo:     deps.ProfileRepo,
		jwtProvider:     deps.JWTProvider,
		otp:             deps.OTP,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*Result, error) {
	u, err := s.users.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := s.openSession(ctx, u, req.DeviceUUID)
	if err != nil {
		return nil, err
	}
	if err := s.otp.Issue(ctx, u); err != nil {
		slog.Warn("verification code not sent at registration", "user_id", u.UserID, "err", err)
	}
	return res, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Result, error) {
	var (
		u   *domain.User
		err error
	)
	if strings.Contains(req.Login, "@") {
		u, err = s.userRepo.GetByEmail(ctx, req.Login)
	} else {
		u, err = s.userRepo.GetByUsername(ctx, req.Login)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Enable == 0 {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.openSession(ctx, u, req.DeviceUUID)
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if sess.RefreshExpiresAt <= now.Unix() {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("account unavailable: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	newExpiry := now.Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, sess.DeviceID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.RefreshToken = newToken
	sess.RefreshExpiresAt = newExpiry
	sess.User = u
	return &Result{Bearer: bearer, RefreshToken: newToken, Session: sess}, nil
}

func (s *service) Current(ctx context.Context, userID string) (*domain.User, *domain.Profile, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.profileRepo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return u, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return u, p, nil
}

func (s *service) ResendCode(ctx context.Context, userID string) (bool, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.Verified() {
		return false, nil
	}
	if err := s.otp.Issue(ctx, u); err != nil {
		if errors.Is(err, domain.ErrAlreadyVerified) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sess.Enable, nil
}

func (s *service) openSession(ctx context.Context, u *domain.User, deviceUUID *string) (*Result, error) {
	dev, err := pkgdevice.Resolve(ctx, s.deviceRepo, deviceUUID, u.UserID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		DeviceID:         dev.DeviceID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, dev.DeviceID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &Result{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}
