package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/Pankajjr12/snapnest-api/internal/storage"
	"github.com/google/uuid"
)

const maxImageSize = 5 << 20 // 5 MB

// FileStorage abstracts the blob store holding profile images.
type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*storage.Object, error)
	Delete(ctx context.Context, key string) error
}

// ImageStore validates profile images and keeps them in a FileStorage
// under random keys that keep the original extension.
type ImageStore struct {
	files FileStorage
	log   *slog.Logger
}

func NewImageStore(files FileStorage, log *slog.Logger) *ImageStore {
	return &ImageStore{files: files, log: log}
}

// Save stores img and returns its key.
func (s *ImageStore) Save(ctx context.Context, img *ImageUpload) (string, error) {
	if img.Size > maxImageSize {
		return "", BadRequest("IMAGE_TOO_LARGE", "Profile image must be under 5 MB.")
	}

	contentType := img.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(img.Filename)))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", BadRequest("INVALID_IMAGE", "Profile image must be an image file.")
	}

	key := uuid.NewString() + imageExt(img.Filename, contentType)
	if err := s.files.Put(ctx, key, io.LimitReader(img.Reader, maxImageSize+1), img.Size, contentType); err != nil {
		s.log.ErrorContext(ctx, "storing profile image", "key", key, "error", err)
		return "", Internal()
	}
	return key, nil
}

// Discard removes a stored image that ended up unreferenced.
func (s *ImageStore) Discard(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "discarding profile image", "key", key, "error", err)
	}
}

// Open returns the stored image for key.
func (s *ImageStore) Open(ctx context.Context, key string) (*storage.Object, error) {
	obj, err := s.files.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, NotFound("IMAGE_NOT_FOUND", "Image not found.")
	}
	if err != nil {
		s.log.ErrorContext(ctx, "opening profile image", "key", key, "error", err)
		return nil, Internal()
	}
	return obj, nil
}

func imageExt(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif":
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
