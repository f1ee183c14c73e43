package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrUploadsDisabled        = errors.New("file uploads are not configured")
	ErrUnsupportedContentType = errors.New("unsupported logo content type")
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

var logoExtensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// LogoKey builds a fresh object key for a club logo so cached URLs never serve a replaced file.
func LogoKey(clubID int, contentType string, now time.Time) (string, error) {
	ext, ok := logoExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	return fmt.Sprintf("clubs/%d/logo-%d.%s", clubID, now.UnixNano(), ext), nil
}
