package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/socialhub-api/internal/application/media"
	"github.com/socialhub-api/internal/domain"
)

// View is a profile as returned to clients, with a signed avatar link.
type View struct {
	UserID    string    `json:"user_id"`
	Username  *string   `json:"username"`
	Bio       *string   `json:"bio"`
	Website   *string   `json:"website"`
	AvatarURL *string   `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated"`
}

type Service interface {
	// Get returns the caller's profile; an empty one if none was saved yet.
	Get(ctx context.Context, userID string) (*View, error)
	// Update creates or updates the profile. A non-nil avatar replaces the
	// current one. Empty strings clear a field.
	Update(ctx context.Context, userID string, req domain.UpdateProfileRequest, avatar *media.Upload) (*View, error)
}

type profileStore interface {
	Put(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
}

type avatarStore interface {
	Replace(ctx context.Context, oldFileID, folder, uploaderID string, in media.Upload) (*domain.File, error)
	URL(ctx context.Context, object string) (string, error)
}

type ServiceDeps struct {
	Repo  profileStore
	Media avatarStore
}

type service struct {
	repo  profileStore
	media avatarStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.Repo, media: deps.Media}
}

func (s *service) Get(ctx context.Context, userID string) (*View, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &View{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p), nil
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest, avatar *media.Upload) (*View, error) {
	if req.Username != nil && *req.Username != "" {
		other, err := s.repo.GetByUsername(ctx, *req.Username)
		if err == nil && other.UserID != userID {
			return nil, fmt.Errorf("the username is already used: %w", domain.ErrConflict)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	now := time.Now().UTC()
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		p = &domain.Profile{UserID: userID, CreatedAt: now}
	} else if err != nil {
		return nil, err
	}

	if avatar != nil {
		old := ""
		if p.AvatarFileID != nil {
			old = *p.AvatarFileID
		}
		f, err := s.media.Replace(ctx, old, media.FolderAvatars, userID, *avatar)
		if err != nil {
			return nil, err
		}
		p.AvatarFileID = &f.FileID
		p.AvatarObject = &f.Object
	}
	p.Username = apply(p.Username, req.Username)
	p.Bio = apply(p.Bio, req.Bio)
	p.Website = apply(p.Website, req.Website)
	p.UpdatedAt = now

	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return s.view(ctx, p), nil
}

func (s *service) view(ctx context.Context, p *domain.Profile) *View {
	v := &View{
		UserID:    p.UserID,
		Username:  p.Username,
		Bio:       p.Bio,
		Website:   p.Website,
		UpdatedAt: p.UpdatedAt,
	}
	if p.AvatarObject != nil {
		url, err := s.media.URL(ctx, *p.AvatarObject)
		if err != nil {
			slog.Warn("presign avatar failed", "user_id", p.UserID, "err", err)
		} else {
			v.AvatarURL = &url
		}
	}
	return v
}

func apply(cur, in *string) *string {
	switch {
	case in == nil:
		return cur
	case *in == "":
		return nil
	default:
		return in
	}
}
