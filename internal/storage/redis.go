package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage implements Storage on Redis string keys.
// A zero ttl keeps records until they are deleted.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage wraps an existing client. prefix namespaces every key.
func NewRedisStorage(client *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStorage) key(key string) string {
	return s.prefix + key
}

// Put stores content with SET, replacing any previous value.
func (s *RedisStorage) Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}

	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to write to redis: %w", err)
	}

	return s.URL(key), nil
}

// Get reads a record.
func (s *RedisStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrFileNotFound(key)
		}
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes a record.
func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// URL returns the namespaced redis key.
func (s *RedisStorage) URL(key string) string {
	return s.key(key)
}

// Exists checks if a record exists.
func (s *RedisStorage) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence in redis: %w", err)
	}
	return n > 0, nil
}

// Close closes the underlying client.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
