package like

import (
	"context"

	"github.com/socialhub-api/internal/domain"
)

type Service interface {
	// Toggle likes a live post for userID, or takes the like back.
	Toggle(ctx context.Context, postID, userID string) (*domain.LikeResult, error)
}

type likeStore interface {
	Toggle(ctx context.Context, postID, userID string) (*domain.LikeResult, error)
}

type postLookup interface {
	Get(ctx context.Context, postID string) (*domain.Post, error)
}

type service struct {
	repo  likeStore
	posts postLookup
}

func NewService(repo likeStore, posts postLookup) Service {
	return &service{repo: repo, posts: posts}
}

func (s *service) Toggle(ctx context.Context, postID, userID string) (*domain.LikeResult, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.Toggle(ctx, postID, userID)
}
