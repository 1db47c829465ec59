package otp

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/metrics"
)

const (
	DefaultLength      = 6
	DefaultExpiration  = 10 * time.Minute
	DefaultMaxAttempts = 5

	// 10^18 is the largest power of ten below MaxInt64.
	maxLength = 18
)

// Config controls code shape and lifetime.
type Config struct {
	Length      int
	Expiration  time.Duration
	MaxAttempts int
}

// Delivery sends a plaintext code to the user over one channel.
type Delivery interface {
	Channel() string
	Deliver(ctx context.Context, u *domain.User, code string, ttl time.Duration) error
}

// VerifiedNotifier is told once per user when verification first succeeds.
type VerifiedNotifier interface {
	UserVerified(ctx context.Context, u *domain.User) error
}

type Service interface {
	// Issue generates, stores and delivers a fresh code for u, replacing any
	// pending one. Delivery errors are returned after the code is persisted.
	Issue(ctx context.Context, u *domain.User) error
	// Verify checks code against the user's pending code.
	Verify(ctx context.Context, userID, code string) (Result, error)
	// CodeLength is the number of digits issued codes have.
	CodeLength() int
}

type otpStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	SetOTP(ctx context.Context, userID, codeHash string, expiresAt int64) error
	IncrementOTPAttempts(ctx context.Context, userID string, now int64, maxAttempts int) (*domain.User, error)
	CompleteOTP(ctx context.Context, userID, codeHash string, now time.Time) (bool, error)
}

type ServiceDeps struct {
	Store    otpStore
	Delivery Delivery
	Notifier VerifiedNotifier
	Clock    Clock
	Random   RandomSource
	Config   Config
}

type service struct {
	store    otpStore
	delivery Delivery
	notifier VerifiedNotifier
	clock    Clock
	random   RandomSource
	cfg      Config
}

func NewService(deps ServiceDeps) Service {
	cfg := deps.Config
	if cfg.Length < 1 || cfg.Length > maxLength {
		cfg.Length = DefaultLength
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultExpiration
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	s := &service{
		store:    deps.Store,
		delivery: deps.Delivery,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		random:   deps.Random,
		cfg:      cfg,
	}
	if s.clock == nil {
		s.clock = SystemClock
	}
	if s.random == nil {
		s.random = CryptoRandom
	}
	return s
}

func (s *service) CodeLength() int { return s.cfg.Length }

func (s *service) Issue(ctx context.Context, u *domain.User) error {
	if u.Verified() {
		return domain.ErrAlreadyVerified
	}
	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	expiresAt := expiryUnix(s.clock.Now().Add(s.cfg.Expiration))
	if err := s.store.SetOTP(ctx, u.UserID, Digest(code), expiresAt); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	channel := s.delivery.Channel()
	if err := s.delivery.Deliver(ctx, u, code, s.cfg.Expiration); err != nil {
		metrics.OTPIssued.WithLabelValues(channel, "failed").Inc()
		return fmt.Errorf("deliver otp via %s: %w", channel, err)
	}
	metrics.OTPIssued.WithLabelValues(channel, "sent").Inc()
	return nil
}

func (s *service) Verify(ctx context.Context, userID, code string) (Result, error) {
	res, err := s.verify(ctx, userID, code)
	if err == nil {
		metrics.OTPVerifications.WithLabelValues(res.String()).Inc()
	}
	return res, err
}

func (s *service) verify(ctx context.Context, userID, code string) (Result, error) {
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return InvalidCode, err
	}
	now := s.clock.Now()
	if res, blocked := s.precheck(u, now); blocked {
		return res, nil
	}

	// The increment is conditioned on the same two checks, so a concurrent
	// attempt that won the race is reflected here rather than overwritten.
	u, err = s.store.IncrementOTPAttempts(ctx, userID, now.Unix(), s.cfg.MaxAttempts)
	if errors.Is(err, domain.ErrConflict) {
		return s.reclassify(ctx, userID, now)
	}
	if err != nil {
		return InvalidCode, fmt.Errorf("record otp attempt: %w", err)
	}

	if u.OTPCodeHash == nil || !hashEqual(Digest(code), *u.OTPCodeHash) {
		return InvalidCode, nil
	}

	newlyVerified, err := s.store.CompleteOTP(ctx, userID, *u.OTPCodeHash, now)
	if errors.Is(err, domain.ErrConflict) {
		// Cleared by a concurrent success, or superseded by a re-issue.
		if res, _ := s.reclassify(ctx, userID, now); res == Expired {
			return Expired, nil
		}
		return InvalidCode, nil
	}
	if err != nil {
		return InvalidCode, fmt.Errorf("complete otp: %w", err)
	}

	if newlyVerified && s.notifier != nil {
		verifiedAt := now.UTC()
		u.VerifiedAt = &verifiedAt
		u.OTPCodeHash, u.OTPExpiresAt, u.OTPAttempts = nil, nil, 0
		if err := s.notifier.UserVerified(ctx, u); err != nil {
			slog.Warn("verified notification failed", "user_id", userID, "err", err)
		}
	}
	return Success, nil
}

// expiryUnix rounds a deadline up to whole seconds so a code never lapses
// before its full lifetime has passed.
func expiryUnix(deadline time.Time) int64 {
	sec := deadline.Unix()
	if deadline.Nanosecond() > 0 {
		sec++
	}
	return sec
}

// precheck applies the two checks that never consume an attempt.
func (s *service) precheck(u *domain.User, now time.Time) (Result, bool) {
	if u.OTPExpired(now) {
		return Expired, true
	}
	if u.OTPAttempts >= s.cfg.MaxAttempts {
		return AttemptsExceeded, true
	}
	return InvalidCode, false
}

// reclassify re-reads the user after a rejected conditional write.
func (s *service) reclassify(ctx context.Context, userID string, now time.Time) (Result, error) {
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return InvalidCode, err
	}
	if res, blocked := s.precheck(u, now); blocked {
		return res, nil
	}
	// A re-issue landed between the two writes; the submitted code targeted
	// the superseded one.
	return Expired, nil
}

// generate draws a code uniformly from [10^(L-1), 10^L - 1].
func (s *service) generate() (string, error) {
	low := pow10(s.cfg.Length - 1)
	high := pow10(s.cfg.Length) - 1
	n, err := s.random.Int63n(high - low + 1)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(low+n, 10), nil
}

// Digest is the stored form of a code: hex SHA-256 of its decimal string.
func Digest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func hashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
