package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dukerupert/adorn/internal"
	"github.com/dukerupert/adorn/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEncryptor(t *testing.T) *crypto.AESEncryptor {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	enc, err := crypto.NewAESEncryptor(key)
	require.NoError(t, err)
	return enc
}

func TestEncryptedStorage(t *testing.T) {
	exerciseStorage(t, NewEncryptedStorage(NewMemoryStorage(), newEncryptor(t)))
}

func TestEncryptedStorage_SealsAtRest(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	s := NewEncryptedStorage(mem, newEncryptor(t))

	const record = `{"state":{"token":"eyJhbGciOi"},"version":0}`
	_, err := s.Put(ctx, "auth-token", strings.NewReader(record), "application/json")
	require.NoError(t, err)

	raw, ok := mem.Raw("auth-token")
	require.True(t, ok)
	assert.NotContains(t, string(raw), "eyJhbGciOi")

	rc, err := s.Get(ctx, "auth-token")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, record, string(got))
}

func TestEncryptedStorage_Unreadable(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	_, err := NewEncryptedStorage(mem, newEncryptor(t)).Put(ctx, "cart-storage", strings.NewReader(`{}`), "")
	require.NoError(t, err)
	_, err = mem.Put(ctx, "theme-storage", strings.NewReader(`{"state":{"isDark":true}}`), "")
	require.NoError(t, err)

	other := NewEncryptedStorage(mem, newEncryptor(t))
	for _, key := range []string{"cart-storage", "theme-storage"} {
		_, err := other.Get(ctx, key)
		assert.True(t, errors.Is(err, ErrUnreadable), "%s: got %v", key, err)
	}

	_, err = other.Get(ctx, "absent")
	assert.True(t, IsNotFound(err))
}

func TestNewStorage_EncryptionKey(t *testing.T) {
	ctx := context.Background()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	s, err := NewStorage(ctx, internal.StorageConfig{Provider: "memory", EncryptionKey: crypto.EncodeKeyBase64(key)})
	require.NoError(t, err)
	assert.IsType(t, &EncryptedStorage{}, s)

	_, err = NewStorage(ctx, internal.StorageConfig{Provider: "memory", EncryptionKey: "c2hvcnQ="})
	assert.ErrorContains(t, err, "STATE_ENCRYPTION_KEY")
}
