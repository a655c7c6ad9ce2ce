package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage implements Storage on the client_state table.
// Each key is one row; Put is an upsert, so writes are atomic per key.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage expects RunMigrations to have been applied.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const upsertState = `
INSERT INTO client_state (key, content_type, data, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (key) DO UPDATE
SET content_type = EXCLUDED.content_type,
    data = EXCLUDED.data,
    updated_at = now()`

// Put upserts the row for key.
func (s *PostgresStorage) Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.pool.Exec(ctx, upsertState, key, contentType, data); err != nil {
		return "", fmt.Errorf("failed to save client state: %w", err)
	}

	return s.URL(key), nil
}

// Get reads the row for key.
func (s *PostgresStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM client_state WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound(key)
		}
		return nil, fmt.Errorf("failed to load client state: %w", err)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the row for key.
func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM client_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete client state: %w", err)
	}
	return nil
}

// URL returns a table-qualified locator for key.
func (s *PostgresStorage) URL(key string) string {
	return "client_state/" + key
}

// Exists checks if a row exists for key.
func (s *PostgresStorage) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM client_state WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check client state: %w", err)
	}
	return exists, nil
}

// Close releases the pool.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
