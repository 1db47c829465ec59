package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/socialhub-api/internal/domain"
	"github.com/socialhub-api/internal/pkg/id"
)

// Folders objects are grouped under.
const (
	FolderPosts   = "posts"
	FolderAvatars = "avatars"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 2 << 20

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload describes one incoming image.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

type Service interface {
	// Upload stores the object and records its metadata row.
	Upload(ctx context.Context, folder, uploaderID string, in Upload) (*domain.File, error)
	// Replace uploads in and then removes oldFileID. An empty oldFileID is a plain upload.
	Replace(ctx context.Context, oldFileID, folder, uploaderID string, in Upload) (*domain.File, error)
	Delete(ctx context.Context, fileID string) error
	// URL returns a time-limited download link for an object key.
	URL(ctx context.Context, object string) (string, error)
}

type objectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type fileStore interface {
	Put(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, fileID string) (*domain.File, error)
	SoftDelete(ctx context.Context, fileID string) error
}

type ServiceDeps struct {
	Objects    objectStore
	FileRepo   fileStore
	PresignTTL time.Duration
}

type service struct {
	objects    objectStore
	fileRepo   fileStore
	presignTTL time.Duration
}

func NewService(deps ServiceDeps) Service {
	ttl := deps.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &service{objects: deps.Objects, fileRepo: deps.FileRepo, presignTTL: ttl}
}

func (s *service) Upload(ctx context.Context, folder, uploaderID string, in Upload) (*domain.File, error) {
	ext, ok := imageExt[strings.ToLower(in.ContentType)]
	if !ok {
		return nil, fmt.Errorf("image must be jpeg, png, gif or webp: %w", domain.ErrBadRequest)
	}
	if in.Size <= 0 || in.Size > MaxImageSize {
		return nil, fmt.Errorf("image must be at most %d KB: %w", MaxImageSize>>10, domain.ErrBadRequest)
	}

	key := fmt.Sprintf("%s/%s/%s%s", folder, uploaderID, id.NewObjectKey(), ext)
	hasher := sha256.New()
	tee := io.TeeReader(in.Reader, hasher)
	if err := s.objects.Put(ctx, key, tee, in.Size, in.ContentType); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	f := &domain.File{
		FileID:           id.New(),
		Object:           key,
		Folder:           folder,
		Size:             in.Size,
		Type:             in.ContentType,
		Name:             sanitizeFilename(in.Filename),
		Hash:             hex.EncodeToString(hasher.Sum(nil)),
		UploadedByUserID: uploaderID,
		Enable:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.fileRepo.Put(ctx, f); err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			slog.Warn("orphaned object after metadata failure", "key", key, "err", derr)
		}
		return nil, err
	}
	return f, nil
}

func (s *service) Replace(ctx context.Context, oldFileID, folder, uploaderID string, in Upload) (*domain.File, error) {
	f, err := s.Upload(ctx, folder, uploaderID, in)
	if err != nil {
		return nil, err
	}
	if oldFileID != "" {
		if err := s.Delete(ctx, oldFileID); err != nil {
			slog.Warn("failed to remove replaced file", "file_id", oldFileID, "err", err)
		}
	}
	return f, nil
}

func (s *service) Delete(ctx context.Context, fileID string) error {
	f, err := s.fileRepo.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if !f.Enable {
		return fmt.Errorf("file not found: %w", domain.ErrNotFound)
	}
	if err := s.objects.Delete(ctx, f.Object); err != nil {
		return err
	}
	return s.fileRepo.SoftDelete(ctx, fileID)
}

func (s *service) URL(ctx context.Context, object string) (string, error) {
	return s.objects.PresignedURL(ctx, object, s.presignTTL)
}

// sanitizeFilename strips directory components and keeps only alphanumerics,
// dot, dash and underscore.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." {
		return result
	}
	return "_"
}
