package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/dukerupert/adorn/internal"
	"github.com/dukerupert/adorn/internal/crypto"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Storage defines the interface for durable blob storage.
// Client state records (cart, wishlist, token, theme) are stored as one blob
// per key; implementations must make a Put visible to the next Get in full.
type Storage interface {
	// Put stores content under key, replacing any previous value, and returns
	// its URL/path.
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Get retrieves a blob by its key. Returns ErrFileNotFound when absent.
	// The returned io.ReadCloser must be closed by the caller.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a blob by its key.
	// Returns nil if the blob doesn't exist (idempotent).
	Delete(ctx context.Context, key string) error

	// URL returns a locator for a stored blob. For local storage this is a
	// file path; for R2 the public HTTPS URL.
	URL(key string) string

	// Exists checks if a blob exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}

// NewStorage creates a Storage implementation based on configuration. When
// an encryption key is configured the backend is wrapped in EncryptedStorage.
func NewStorage(ctx context.Context, cfg internal.StorageConfig) (Storage, error) {
	var enc crypto.Encryptor
	if cfg.EncryptionKey != "" {
		key, err := crypto.DecodeKeyBase64(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid STATE_ENCRYPTION_KEY: %w", err)
		}
		if enc, err = crypto.NewAESEncryptor(key); err != nil {
			return nil, fmt.Errorf("invalid STATE_ENCRYPTION_KEY: %w", err)
		}
	}

	s, err := newBackend(ctx, cfg)
	if err != nil || enc == nil {
		return s, err
	}
	return NewEncryptedStorage(s, enc), nil
}

func newBackend(ctx context.Context, cfg internal.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath)
	case "memory":
		return NewMemoryStorage(), nil
	case "r2":
		return NewR2Storage(ctx, R2Config{
			AccountID:   cfg.R2AccountID,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			BucketName:  cfg.R2BucketName,
			PublicURL:   cfg.R2PublicURL,
		})
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisStorage(client, cfg.RedisPrefix, cfg.RedisTTL), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := RunMigrations(pool); err != nil {
			pool.Close()
			return nil, err
		}
		return NewPostgresStorage(pool), nil
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}
