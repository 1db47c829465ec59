package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/id"
)

const verifiedMessage = "Your email address has been verified."

type Service interface {
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	// UserVerified records the verification in the user's inbox and, when a
	// topic is configured, publishes a user.verified event.
	UserVerified(ctx context.Context, u *domain.User) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

type topicPublisher interface {
	Publish(ctx context.Context, topicARN, eventType string, payload []byte) error
}

type ServiceDeps struct {
	Repo      notificationStore
	Publisher topicPublisher // optional
	TopicARN  string         // empty disables publishing
}

type service struct {
	repo      notificationStore
	publisher topicPublisher
	topicARN  string
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.Repo, publisher: deps.Publisher, topicARN: deps.TopicARN}
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

type verifiedEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	VerifiedAt time.Time `json:"verified_at"`
}

func (s *service) UserVerified(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         u.UserID,
		Kind:           domain.NotificationVerified,
		Message:        verifiedMessage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return fmt.Errorf("store verified notification: %w", err)
	}

	if s.publisher == nil || s.topicARN == "" {
		return nil
	}
	verifiedAt := now
	if u.VerifiedAt != nil {
		verifiedAt = *u.VerifiedAt
	}
	payload, err := json.Marshal(verifiedEvent{UserID: u.UserID, Email: u.Email, VerifiedAt: verifiedAt})
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, s.topicARN, domain.NotificationVerified, payload); err != nil {
		// The inbox row is already written; the event is best effort.
		slog.Warn("publish verified event failed", "user_id", u.UserID, "err", err)
	}
	return nil
}
