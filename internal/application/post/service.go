package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/socialhub-api/internal/application/media"
	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/id"
)

// DefaultPageSize is used when the caller asks for no particular page size.
const (
	DefaultPageSize = 10
	maxPageSize     = 50
)

// Author is the public face of a post's writer.
type Author struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

// View is a post as returned to clients.
type View struct {
	ID        string    `json:"id"`
	Content   string    `json:"post_content"`
	ImageURL  *string   `json:"image_url"`
	Category  *string   `json:"category"`
	Tags      []string  `json:"tags"`
	Author    *Author   `json:"author"`
	LikeCount int       `json:"count_like"`
	PostedAt  time.Time `json:"posted_at"`
	UpdatedAt time.Time `json:"updated"`
}

type Service interface {
	Feed(ctx context.Context, limit int, cursor string) ([]View, string, error)
	Get(ctx context.Context, postID string) (*View, error)
	// Create stores a post. A non-nil image is uploaded first.
	Create(ctx context.Context, actorID string, req domain.CreatePostRequest, image *media.Upload) (*View, error)
	// Update edits a post owned by actorID, or any post for an admin.
	// Empty category or an empty tag list clears the field.
	Update(ctx context.Context, actorID, actorRole, postID string, req domain.UpdatePostRequest, image *media.Upload) (*View, error)
	Delete(ctx context.Context, actorID, actorRole, postID string) error
}

type postStore interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Feed(ctx context.Context, limit int32, cursor string) ([]domain.Post, string, error)
	Update(ctx context.Context, postID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, postID string) error
}

type userLookup interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type profileLookup interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type imageStore interface {
	Upload(ctx context.Context, folder, uploaderID string, in media.Upload) (*domain.File, error)
	Replace(ctx context.Context, oldFileID, folder, uploaderID string, in media.Upload) (*domain.File, error)
	Delete(ctx context.Context, fileID string) error
	URL(ctx context.Context, object string) (string, error)
}

type termResolver interface {
	Resolve(ctx context.Context, refs []string) ([]string, error)
}

type ServiceDeps struct {
	Repo       postStore
	Users      userLookup
	Profiles   profileLookup
	Media      imageStore
	Tags       termResolver
	Categories termResolver
}

type service struct {
	repo       postStore
	users      userLookup
	profiles   profileLookup
	media      imageStore
	tags       termResolver
	categories termResolver
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.Repo,
		users:      deps.Users,
		profiles:   deps.Profiles,
		media:      deps.Media,
		tags:       deps.Tags,
		categories: deps.Categories,
	}
}

func (s *service) Feed(ctx context.Context, limit int, cursor string) ([]View, string, error) {
	if limit < 1 || limit > maxPageSize {
		limit = DefaultPageSize
	}
	posts, next, err := s.repo.Feed(ctx, int32(limit), cursor)
	if err != nil {
		return nil, "", err
	}
	authors := make(map[string]*Author)
	views := make([]View, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		a, ok := authors[p.UserID]
		if !ok {
			a = s.author(ctx, p.UserID)
			authors[p.UserID] = a
		}
		views = append(views, s.view(ctx, p, a))
	}
	return views, next, nil
}

func (s *service) Get(ctx context.Context, postID string) (*View, error) {
	p, err := s.repo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	v := s.view(ctx, p, s.author(ctx, p.UserID))
	return &v, nil
}

func (s *service) Create(ctx context.Context, actorID string, req domain.CreatePostRequest, image *media.Upload) (*View, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("post content is required: %w", domain.ErrBadRequest)
	}
	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.Resolve(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Post{
		PostID:    id.New(),
		UserID:    actorID,
		Content:   content,
		Category:  category,
		Tags:      tags,
		Enable:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if image != nil {
		f, err := s.media.Upload(ctx, media.FolderPosts, actorID, *image)
		if err != nil {
			return nil, err
		}
		p.ImageFileID = &f.FileID
		p.ImageObject = &f.Object
	}
	if err := s.repo.Put(ctx, p); err != nil {
		if p.ImageFileID != nil {
			if derr := s.media.Delete(ctx, *p.ImageFileID); derr != nil {
				slog.Warn("failed to remove image of unsaved post", "file_id", *p.ImageFileID, "err", derr)
			}
		}
		return nil, err
	}
	v := s.view(ctx, p, s.author(ctx, actorID))
	return &v, nil
}

func (s *service) Update(ctx context.Context, actorID, actorRole, postID string, req domain.UpdatePostRequest, image *media.Upload) (*View, error) {
	p, err := s.repo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModify(actorID, actorRole, p.UserID) {
		return nil, fmt.Errorf("you can only update your own posts: %w", domain.ErrForbidden)
	}

	updates := make(map[string]interface{})
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, fmt.Errorf("post content cannot be empty: %w", domain.ErrBadRequest)
		}
		updates["content"] = content
		p.Content = content
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, req.Category)
		if err != nil {
			return nil, err
		}
		if category == nil {
			updates["category"] = nil
		} else {
			updates["category"] = *category
		}
		p.Category = category
	}
	if req.Tags != nil {
		tags, err := s.tags.Resolve(ctx, req.Tags)
		if err != nil {
			return nil, err
		}
		if len(tags) == 0 {
			updates["tags"] = nil
		} else {
			updates["tags"] = tags
		}
		p.Tags = tags
	}
	if image != nil {
		old := ""
		if p.ImageFileID != nil {
			old = *p.ImageFileID
		}
		f, err := s.media.Replace(ctx, old, media.FolderPosts, p.UserID, *image)
		if err != nil {
			return nil, err
		}
		updates["image_file_id"] = f.FileID
		updates["image_object"] = f.Object
		p.ImageFileID = &f.FileID
		p.ImageObject = &f.Object
	}
	if len(updates) == 0 {
		v := s.view(ctx, p, s.author(ctx, p.UserID))
		return &v, nil
	}

	if err := s.repo.Update(ctx, postID, updates); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	v := s.view(ctx, p, s.author(ctx, p.UserID))
	return &v, nil
}

func (s *service) Delete(ctx context.Context, actorID, actorRole, postID string) error {
	p, err := s.repo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if !domain.CanModify(actorID, actorRole, p.UserID) {
		return fmt.Errorf("you can only delete your own posts: %w", domain.ErrForbidden)
	}
	if err := s.repo.SoftDelete(ctx, postID); err != nil {
		return err
	}
	if p.ImageFileID != nil {
		if err := s.media.Delete(ctx, *p.ImageFileID); err != nil {
			slog.Warn("failed to remove post image", "post_id", postID, "file_id", *p.ImageFileID, "err", err)
		}
	}
	return nil
}

// resolveCategory returns nil for an absent or empty reference.
func (s *service) resolveCategory(ctx context.Context, ref *string) (*string, error) {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil, nil
	}
	keys, err := s.categories.Resolve(ctx, []string{*ref})
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("unknown category %q: %w", *ref, domain.ErrBadRequest)
	}
	return &keys[0], nil
}

// author never fails; a missing user or profile yields a partial author.
func (s *service) author(ctx context.Context, userID string) *Author {
	a := &Author{ID: userID}
	if u, err := s.users.Get(ctx, userID); err == nil {
		a.Username = u.Username
		a.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	} else if !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("load post author failed", "user_id", userID, "err", err)
	}
	if s.profiles == nil {
		return a
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil || p.AvatarObject == nil {
		return a
	}
	if url, err := s.media.URL(ctx, *p.AvatarObject); err == nil {
		a.AvatarURL = &url
	} else {
		slog.Warn("presign avatar failed", "user_id", userID, "err", err)
	}
	return a
}

func (s *service) view(ctx context.Context, p *domain.Post, a *Author) View {
	v := View{
		ID:        p.PostID,
		Content:   p.Content,
		Category:  p.Category,
		Tags:      p.Tags,
		Author:    a,
		LikeCount: p.LikeCount,
		PostedAt:  p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if p.ImageObject != nil {
		url, err := s.media.URL(ctx, *p.ImageObject)
		if err != nil {
			slog.Warn("presign post image failed", "post_id", p.PostID, "err", err)
		} else {
			v.ImageURL = &url
		}
	}
	return v
}
