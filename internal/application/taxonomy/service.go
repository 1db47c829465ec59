package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/slug"
)

const (
	KindTag      = "tag"
	KindCategory = "category"
)

// Service manages one vocabulary: tags or categories.
type Service interface {
	List(ctx context.Context) ([]domain.Term, error)
	// Create derives the slug from the name; a duplicate slug is ErrConflict.
	Create(ctx context.Context, in domain.TermInput) (*domain.Term, error)
	// Resolve maps names or slugs to existing slugs, dropping duplicates.
	// An unknown entry is ErrBadRequest.
	Resolve(ctx context.Context, refs []string) ([]string, error)
}

type termStore interface {
	Create(ctx context.Context, t *domain.Term) error
	Get(ctx context.Context, slug string) (*domain.Term, error)
	List(ctx context.Context) ([]domain.Term, error)
}

type service struct {
	repo termStore
	kind string
}

func NewService(repo termStore, kind string) Service {
	return &service{repo: repo, kind: kind}
}

func (s *service) List(ctx context.Context) ([]domain.Term, error) {
	return s.repo.List(ctx)
}

func (s *service) Create(ctx context.Context, in domain.TermInput) (*domain.Term, error) {
	name := strings.TrimSpace(in.Name)
	key := slug.Make(name)
	if key == "" {
		return nil, fmt.Errorf("%s name has no usable characters: %w", s.kind, domain.ErrBadRequest)
	}
	t := &domain.Term{Slug: key, Name: name, CreatedAt: time.Now().UTC()}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Resolve(ctx context.Context, refs []string) ([]string, error) {
	seen := make(map[string]bool, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		key := ref
		if !slug.Valid(key) {
			key = slug.Make(ref)
		}
		if key == "" || seen[key] {
			continue
		}
		if _, err := s.repo.Get(ctx, key); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("unknown %s %q: %w", s.kind, ref, domain.ErrBadRequest)
			}
			return nil, err
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}
