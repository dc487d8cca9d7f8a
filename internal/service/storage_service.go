package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"novelhub/internal/backend"
)

const (
	BucketNovelCovers     = "novel_coverpage"
	BucketProfilePictures = "profile_pictures"

	DefaultMaxUploadSize int64 = 2 << 20
	uploadCacheControl         = "3600"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Upload is an image picked by the user.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type StorageService interface {
	UploadNovelCover(ctx context.Context, f *Upload) (string, error)
	UploadProfilePicture(ctx context.Context, f *Upload) (string, error)
	DeleteNovelCover(ctx context.Context, name string) error
	DeleteProfilePicture(ctx context.Context, name string) error
	Validate(f *Upload) error
}

type storageService struct {
	store   backend.StorageAPI
	maxSize int64
	now     func() time.Time
	run     runner
}

func NewStorageService(store backend.StorageAPI, maxSize int64, opts Options) StorageService {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &storageService{store: store, maxSize: maxSize, now: time.Now, run: newRunner(opts)}
}

// Validate checks size and image type.
func (s *storageService) Validate(f *Upload) error {
	if f == nil || f.Body == nil {
		return invalid("file", "No file selected")
	}
	if f.Size > s.maxSize {
		return invalid("file", fmt.Sprintf("File size must be less than %s", formatMB(s.maxSize)))
	}
	if _, ok := allowedImageTypes[contentType(f)]; !ok {
		return invalid("file", "Invalid file type. Only JPEG, PNG and WebP images are allowed.")
	}
	return nil
}

func (s *storageService) UploadNovelCover(ctx context.Context, f *Upload) (string, error) {
	url, err := s.upload(ctx, BucketNovelCovers, "novel_cover", f)
	if err != nil {
		return "", &stepError{step: "Failed to upload cover image", err: err}
	}
	return url, nil
}

func (s *storageService) UploadProfilePicture(ctx context.Context, f *Upload) (string, error) {
	url, err := s.upload(ctx, BucketProfilePictures, "profile", f)
	if err != nil {
		return "", &stepError{step: "Failed to upload profile picture", err: err}
	}
	return url, nil
}

func (s *storageService) upload(ctx context.Context, bucket, prefix string, f *Upload) (string, error) {
	if err := s.Validate(f); err != nil {
		return "", err
	}
	name := s.objectName(prefix, f)

	// The body is a stream, so the upload is raced but never retried.
	err := exec(ctx, s.run, "Uploading image", func(ctx context.Context) error {
		return s.store.Upload(ctx, bucket, name, f.Body, backend.UploadOptions{
			ContentType:  contentType(f),
			CacheControl: uploadCacheControl,
			Upsert:       false,
		})
	})
	if err != nil {
		return "", err
	}

	url := s.store.PublicURL(bucket, name)
	if url == "" {
		return "", fmt.Errorf("Failed to get public URL for uploaded file")
	}
	return url, nil
}

// objectName is <prefix>_<unix ms>.<ext>, the extension taken from the
// original file name when it has one.
func (s *storageService) objectName(prefix string, f *Upload) string {
	ext := strings.TrimPrefix(filepath.Ext(f.Filename), ".")
	if ext == "" {
		ext = allowedImageTypes[contentType(f)]
	}
	return fmt.Sprintf("%s_%d.%s", prefix, s.now().UnixMilli(), ext)
}

func (s *storageService) DeleteNovelCover(ctx context.Context, name string) error {
	if err := s.remove(ctx, BucketNovelCovers, name); err != nil {
		return &stepError{step: "Failed to delete cover image", err: err}
	}
	return nil
}

func (s *storageService) DeleteProfilePicture(ctx context.Context, name string) error {
	if err := s.remove(ctx, BucketProfilePictures, name); err != nil {
		return &stepError{step: "Failed to delete profile picture", err: err}
	}
	return nil
}

func (s *storageService) remove(ctx context.Context, bucket, name string) error {
	if name == "" {
		return invalid("name", "File name is required")
	}
	return exec(ctx, s.run, "Deleting image", func(ctx context.Context) error {
		return s.store.Remove(ctx, bucket, name)
	})
}

// contentType falls back to the file extension when the client sent none.
func contentType(f *Upload) string {
	ct := f.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(filepath.Ext(f.Filename))
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func formatMB(n int64) string {
	if n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%.1fMB", float64(n)/float64(1<<20))
}
