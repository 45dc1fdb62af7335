package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/flipcart/internal"
	"github.com/dukerupert/flipcart/internal/domain"
)

func TestLocalStorage_PutExistsDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.Put(ctx, "products/v1/a.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/v1/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "products", "v1", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	ok, err := s.Exists(ctx, "products/v1/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "products/v1/a.jpg"))
	require.NoError(t, s.Delete(ctx, "products/v1/a.jpg"))

	ok, err = s.Exists(ctx, "products/v1/a.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := os.ReadDir(filepath.Join(dir, "products", "v1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "../escape.jpg", strings.NewReader("x"), "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = s.Exists(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestImageExtension(t *testing.T) {
	tests := []struct {
		contentType string
		ext         string
		ok          bool
	}{
		{"image/jpeg", ".jpg", true},
		{"IMAGE/PNG; charset=binary", ".png", true},
		{"image/webp", ".webp", true},
		{"text/plain", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			ext, ok := ImageExtension(tt.contentType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ext, ext)
		})
	}
}

func TestImageKey(t *testing.T) {
	key := ImageKey("v/../1", 3, ".png")
	assert.True(t, strings.HasPrefix(key, "products/v____1/3-"), key)
	assert.True(t, strings.HasSuffix(key, ".png"))

	assert.True(t, strings.HasPrefix(ImageKey(" ", 0, ".jpg"), "products/unassigned/"))
	assert.NotEqual(t, ImageKey("v1", 1, ".jpg"), ImageKey("v1", 1, ".jpg"))
}

func TestNewStorage(t *testing.T) {
	s, err := NewStorage(internal.StorageConfig{Provider: "", LocalPath: t.TempDir(), LocalURL: "/uploads"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = NewStorage(internal.StorageConfig{Provider: "ftp"})
	assert.True(t, domain.IsCode(err, domain.EINVALID))

	_, err = NewStorage(internal.StorageConfig{Provider: "r2", R2AccountID: "acct"})
	assert.ErrorIs(t, err, ErrR2CredentialsRequired)
}

type mockS3 struct {
	PutObjectFunc  func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	HeadObjectFunc func(ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.PutObjectFunc(ctx, in)
}

func (m *mockS3) DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return m.HeadObjectFunc(ctx, in)
}

func TestR2Storage(t *testing.T) {
	var put *s3.PutObjectInput
	client := &mockS3{
		PutObjectFunc: func(_ context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			put = in
			_, _ = io.ReadAll(in.Body)
			return &s3.PutObjectOutput{}, nil
		},
		HeadObjectFunc: func(_ context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
			if *in.Key == "missing" {
				return nil, &types.NotFound{}
			}
			return nil, errors.New("boom")
		},
	}
	s := &R2Storage{client: client, bucket: "images", publicURL: "https://cdn.test"}

	url, err := s.Put(context.Background(), "products/v1/a.jpg", strings.NewReader("x"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/products/v1/a.jpg", url)
	assert.Equal(t, "images", *put.Bucket)
	assert.Equal(t, imageCacheControl, *put.CacheControl)

	ok, err := s.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Exists(context.Background(), "other")
	assert.ErrorContains(t, err, "boom")
}
