package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukerupert/adorn/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the behaviour every backend must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		assert.True(t, IsNotFound(err), "got %v", err)

		ok, err := s.Exists(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("put then get", func(t *testing.T) {
		_, err := s.Put(ctx, "cart-storage", strings.NewReader(`{"state":{"items":[]}}`), "application/json")
		require.NoError(t, err)

		rc, err := s.Get(ctx, "cart-storage")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, `{"state":{"items":[]}}`, string(data))

		ok, err := s.Exists(ctx, "cart-storage")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("put replaces", func(t *testing.T) {
		_, err := s.Put(ctx, "theme-storage", strings.NewReader("first-and-longer"), "text/plain")
		require.NoError(t, err)
		_, err = s.Put(ctx, "theme-storage", strings.NewReader("second"), "text/plain")
		require.NoError(t, err)

		rc, err := s.Get(ctx, "theme-storage")
		require.NoError(t, err)
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "second", string(data))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		_, err := s.Put(ctx, "wishlist-storage", strings.NewReader("x"), "text/plain")
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "wishlist-storage"))
		require.NoError(t, s.Delete(ctx, "wishlist-storage"))

		_, err = s.Get(ctx, "wishlist-storage")
		assert.True(t, IsNotFound(err))
	})
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	exerciseStorage(t, s)

	t.Run("leaves no temp files behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp")
		}
	})

	t.Run("rejects traversal", func(t *testing.T) {
		_, err := s.Put(context.Background(), "../escape", strings.NewReader("x"), "")
		assert.Error(t, err)
		_, statErr := os.Stat(filepath.Join(dir, "..", "escape"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestMemoryStorage_PutErr(t *testing.T) {
	s := NewMemoryStorage()
	s.PutErr = assert.AnError

	_, err := s.Put(context.Background(), "k", strings.NewReader("v"), "")
	assert.ErrorIs(t, err, assert.AnError)
	_, ok := s.Raw("k")
	assert.False(t, ok)
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	s, err := NewStorage(ctx, internal.StorageConfig{Provider: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = NewStorage(ctx, internal.StorageConfig{Provider: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = NewStorage(ctx, internal.StorageConfig{Provider: "floppy"})
	assert.ErrorContains(t, err, "unknown storage provider")

	_, err = NewStorage(ctx, internal.StorageConfig{Provider: "r2"})
	assert.ErrorIs(t, err, ErrR2AccountIDRequired)
}

func TestNewS3Storage(t *testing.T) {
	ctx := context.Background()

	_, err := NewStorage(ctx, internal.StorageConfig{Provider: "s3"})
	assert.ErrorIs(t, err, ErrS3BucketRequired)

	s, err := NewS3Storage(ctx, S3Config{Bucket: "adorn-state", Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://adorn-state.s3.eu-west-1.amazonaws.com/cart-storage", s.URL("cart-storage"))

	s, err = NewS3Storage(ctx, S3Config{Bucket: "adorn-state", Endpoint: "http://localhost:9000"})
	require.NoError(t, err)
	assert.Equal(t, "cart-storage", s.URL("cart-storage"))
}
