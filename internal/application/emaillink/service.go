package emaillink

import (
	"context"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/socialhub-api/internal/application/otp"
	"github.com/socialhub-api/internal/domain"
	jwtinfra "github.com/socialhub-api/internal/infrastructure/jwt"
	"github.com/socialhub-api/internal/pkg/id"
	"github.com/socialhub-api/internal/pkg/metrics"
)

const (
	// Purpose is the audience of every email verification signature.
	Purpose = "email-verify"

	DefaultExpiration = 60 * time.Minute
)

var (
	// ErrInvalidSignature covers a missing, tampered or expired signature,
	// and one issued for a different address.
	ErrInvalidSignature = fmt.Errorf("invalid signature: %w", domain.ErrForbidden)
	// ErrInvalidLink is a well-signed link that no longer matches the account.
	ErrInvalidLink = fmt.Errorf("invalid verification link: %w", domain.ErrForbidden)
)

// Result is the outcome of redeeming a valid link.
type Result int

const (
	Verified Result = iota + 1
	AlreadyVerified
)

func (r Result) Message() string {
	if r == AlreadyVerified {
		return "Email already verified"
	}
	return "Email verified successfully"
}

type Service interface {
	// Send mails a fresh link to the user, superseding any earlier one. It
	// reports false without sending when the user is already verified.
	Send(ctx context.Context, userID string) (bool, error)
	// Confirm redeems the link /email/verify/{userID}/{hash}?signature=...
	Confirm(ctx context.Context, userID, hash, signature string) (Result, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	MarkVerified(ctx context.Context, userID string, now time.Time) (bool, error)
}

type linkStore interface {
	Put(ctx context.Context, v *domain.LinkVerification) error
	Consume(ctx context.Context, userID, verType, linkID string, now int64) error
}

type linkSigner interface {
	SignLink(userID, purpose, digest, linkID string, expiresAt time.Time) (string, error)
	VerifyLink(tokenStr, purpose string) (*jwtinfra.LinkClaims, error)
}

type ServiceDeps struct {
	Users    userStore
	Links    linkStore
	Signer   linkSigner
	Mailer   htmlMailer
	Notifier otp.VerifiedNotifier
	Clock    otp.Clock
	// BaseURL is the public origin links point at, e.g. https://api.example.com.
	BaseURL    string
	Expiration time.Duration
}

type service struct {
	users    userStore
	links    linkStore
	signer   linkSigner
	mailer   htmlMailer
	notifier otp.VerifiedNotifier
	clock    otp.Clock
	baseURL  string
	ttl      time.Duration
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:    deps.Users,
		links:    deps.Links,
		signer:   deps.Signer,
		mailer:   deps.Mailer,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		baseURL:  strings.TrimRight(deps.BaseURL, "/"),
		ttl:      deps.Expiration,
	}
	if s.clock == nil {
		s.clock = otp.SystemClock
	}
	if s.ttl <= 0 {
		s.ttl = DefaultExpiration
	}
	return s
}

func (s *service) Send(ctx context.Context, userID string) (bool, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.Verified() {
		return false, nil
	}

	linkID := id.New()
	digest := EmailDigest(u.Email)
	expiresAt := s.clock.Now().Add(s.ttl)
	sig, err := s.signer.SignLink(u.UserID, Purpose, digest, linkID, expiresAt)
	if err != nil {
		return false, fmt.Errorf("sign verification link: %w", err)
	}
	// Rounded up so the record never lapses before the signature does.
	err = s.links.Put(ctx, &domain.LinkVerification{
		UserID:    u.UserID,
		Type:      domain.VerificationTypeEmail,
		LinkID:    linkID,
		ExpiresAt: expiresAt.Add(time.Second - 1).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("store verification link: %w", err)
	}

	body, err := RenderEmail(u, s.linkURL(u.UserID, digest, sig), s.ttl)
	if err != nil {
		return false, err
	}
	if err := s.mailer.SendHTML(u.Email, emailSubject, body); err != nil {
		metrics.EmailLinks.WithLabelValues("failed").Inc()
		return false, fmt.Errorf("send verification link: %w", err)
	}
	metrics.EmailLinks.WithLabelValues("sent").Inc()
	return true, nil
}

func (s *service) Confirm(ctx context.Context, userID, hash, signature string) (Result, error) {
	claims, err := s.signer.VerifyLink(signature, Purpose)
	if err != nil {
		return 0, ErrInvalidSignature
	}
	// The signature covers the path it was issued for.
	if claims.Subject != userID || claims.Digest != hash {
		return 0, ErrInvalidSignature
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !hashEqual(hash, EmailDigest(u.Email)) {
		return 0, ErrInvalidLink
	}
	if u.Verified() {
		return AlreadyVerified, nil
	}

	now := s.clock.Now()
	err = s.links.Consume(ctx, userID, domain.VerificationTypeEmail, claims.ID, now.Unix())
	if errors.Is(err, domain.ErrNotFound) {
		return 0, ErrInvalidLink
	}
	if err != nil {
		return 0, fmt.Errorf("consume verification link: %w", err)
	}

	newlyVerified, err := s.users.MarkVerified(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("mark verified: %w", err)
	}
	if !newlyVerified {
		return AlreadyVerified, nil
	}
	metrics.EmailLinks.WithLabelValues("verified").Inc()

	if s.notifier != nil {
		verifiedAt := now.UTC()
		u.VerifiedAt = &verifiedAt
		u.OTPCodeHash, u.OTPExpiresAt, u.OTPAttempts = nil, nil, 0
		if err := s.notifier.UserVerified(ctx, u); err != nil {
			slog.Warn("verified notification failed", "user_id", userID, "err", err)
		}
	}
	return Verified, nil
}

func (s *service) linkURL(userID, digest, sig string) string {
	q := url.Values{"signature": {sig}}
	return fmt.Sprintf("%s/v1/email/verify/%s/%s?%s", s.baseURL, url.PathEscape(userID), digest, q.Encode())
}

// EmailDigest is the {hash} path segment: hex SHA-1 of the address.
func EmailDigest(email string) string {
	sum := sha1.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

func hashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
