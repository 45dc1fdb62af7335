// Package storage keeps uploaded product images on the local disk or in a
// Cloudflare R2 bucket and hands back the URL recorded on the variant.
package storage

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dukerupert/flipcart/internal"
)

// Storage defines the interface for image storage backends.
type Storage interface {
	// Put stores content under key and returns its public URL.
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for key.
	URL(key string) string

	Exists(ctx context.Context, key string) (bool, error)
}

// imageTypes maps the accepted upload content types to file extensions.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the extension for an accepted image content type.
func ImageExtension(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext, ok := imageTypes[ct]
	return ext, ok
}

// ImageKey builds a unique object key for an image of a variant. Uploads
// without a variant land under "products/unassigned".
func ImageKey(variantID string, slot int, ext string) string {
	dir := "unassigned"
	if variantID = strings.TrimSpace(variantID); variantID != "" {
		dir = sanitizeSegment(variantID)
	}
	name := uuid.NewString() + ext
	if slot > 0 {
		name = strconv.Itoa(slot) + "-" + name
	}
	return path.Join("products", dir, name)
}

func sanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NewStorage creates a Storage implementation based on configuration.
func NewStorage(cfg internal.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case "r2":
		return NewR2Storage(R2Config{
			AccountID:   cfg.R2AccountID,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			BucketName:  cfg.R2BucketName,
			PublicURL:   cfg.R2PublicURL,
		})
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}
