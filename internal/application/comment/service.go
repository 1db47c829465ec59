package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/id"
)

const (
	DefaultPageSize = 10
	maxPageSize     = 50
)

// Service manages comments under a post. Every operation first checks that
// the post is still live.
type Service interface {
	List(ctx context.Context, postID string, limit int, cursor string) ([]domain.Comment, string, error)
	Create(ctx context.Context, actorID, postID string, req domain.CommentRequest) (*domain.Comment, error)
	Get(ctx context.Context, commentID string) (*domain.Comment, error)
	Update(ctx context.Context, actorID, actorRole, commentID string, req domain.CommentRequest) (*domain.Comment, error)
	Delete(ctx context.Context, actorID, actorRole, commentID string) error
}

type commentStore interface {
	Put(ctx context.Context, c *domain.Comment) error
	Get(ctx context.Context, commentID string) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID string, limit int32, cursor string) ([]domain.Comment, string, error)
	UpdateContent(ctx context.Context, commentID, content string) error
	Delete(ctx context.Context, commentID string) error
}

type postLookup interface {
	Get(ctx context.Context, postID string) (*domain.Post, error)
}

type service struct {
	repo  commentStore
	posts postLookup
}

func NewService(repo commentStore, posts postLookup) Service {
	return &service{repo: repo, posts: posts}
}

func (s *service) List(ctx context.Context, postID string, limit int, cursor string) ([]domain.Comment, string, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, "", err
	}
	if limit < 1 || limit > maxPageSize {
		limit = DefaultPageSize
	}
	return s.repo.ListByPost(ctx, postID, int32(limit), cursor)
}

func (s *service) Create(ctx context.Context, actorID, postID string, req domain.CommentRequest) (*domain.Comment, error) {
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c := &domain.Comment{
		CommentID: id.New(),
		PostID:    postID,
		UserID:    actorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get hides comments whose post has been deleted.
func (s *service) Get(ctx context.Context, commentID string) (*domain.Comment, error) {
	c, err := s.repo.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.Get(ctx, c.PostID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("comment not found: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) Update(ctx context.Context, actorID, actorRole, commentID string, req domain.CommentRequest) (*domain.Comment, error) {
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModify(actorID, actorRole, c.UserID) {
		return nil, fmt.Errorf("you can only update your own comments: %w", domain.ErrForbidden)
	}
	if err := s.repo.UpdateContent(ctx, commentID, content); err != nil {
		return nil, err
	}
	c.Content = content
	c.UpdatedAt = time.Now().UTC()
	return c, nil
}

func (s *service) Delete(ctx context.Context, actorID, actorRole, commentID string) error {
	c, err := s.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if !domain.CanModify(actorID, actorRole, c.UserID) {
		return fmt.Errorf("you can only delete your own comments: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, commentID)
}

func cleanContent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("comment content is required: %w", domain.ErrBadRequest)
	}
	return s, nil
}
