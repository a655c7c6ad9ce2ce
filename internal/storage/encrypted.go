package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dukerupert/adorn/internal/crypto"
)

// EncryptedStorage seals every blob before handing it to the wrapped backend.
// Used when client state (including the bearer token) lives somewhere shared,
// such as Redis or a bucket.
type EncryptedStorage struct {
	Storage
	enc crypto.Encryptor
}

// NewEncryptedStorage wraps inner with enc.
func NewEncryptedStorage(inner Storage, enc crypto.Encryptor) *EncryptedStorage {
	return &EncryptedStorage{Storage: inner, enc: enc}
}

func (s *EncryptedStorage) Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	plain, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	sealed, err := s.enc.Encrypt(plain)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return s.Storage.Put(ctx, key, bytes.NewReader(sealed), "application/octet-stream")
}

// Get returns the decrypted blob. A blob that fails authentication (wrong
// key, tampering, written unencrypted) is reported as ErrUnreadable.
func (s *EncryptedStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.Storage.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sealed, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	plain, err := s.enc.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, key, err)
	}
	return io.NopCloser(bytes.NewReader(plain)), nil
}

// Close closes the wrapped backend if it holds connections.
func (s *EncryptedStorage) Close() error {
	if c, ok := s.Storage.(Closer); ok {
		return c.Close()
	}
	return nil
}
