// Package store holds the persisted client state: cart, wishlist, auth token
// and theme. Each is kept in memory and written through to a storage.Storage
// under its own key on every mutation.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dukerupert/adorn/internal/storage"
	"github.com/dukerupert/adorn/internal/telemetry"
	"github.com/rs/zerolog"
)

// Storage keys. Each record is independent.
const (
	CartKey     = "cart-storage"
	WishlistKey = "wishlist-storage"
	TokenKey    = "auth-token"
	ThemeKey    = "theme-storage"
)

const recordVersion = 0

// record is the on-disk envelope: {"state": ..., "version": 0}.
type record[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// Options carries the optional collaborators shared by every store.
type Options struct {
	Logger  zerolog.Logger
	Metrics *telemetry.Metrics
}

// errCorrupt marks a record that exists but cannot be decoded.
type errCorrupt struct {
	key string
	err error
}

func (e *errCorrupt) Error() string {
	return fmt.Sprintf("corrupt record %s: %v", e.key, e.err)
}

func (e *errCorrupt) Unwrap() error { return e.err }

// load reads the record at key. found is false when no record exists.
func load[T any](ctx context.Context, s storage.Storage, key string) (state T, found bool, err error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		if storage.IsNotFound(err) {
			return state, false, nil
		}
		if errors.Is(err, storage.ErrUnreadable) {
			return state, true, &errCorrupt{key: key, err: err}
		}
		return state, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return state, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var rec record[T]
	if err := json.Unmarshal(data, &rec); err != nil {
		return state, true, &errCorrupt{key: key, err: err}
	}
	return rec.State, true, nil
}

// save serialises the full state and writes it synchronously.
func save[T any](ctx context.Context, s storage.Storage, key string, state T) error {
	data, err := json.Marshal(record[T]{State: state, Version: recordVersion})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if _, err := s.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// loadOrReset loads a record; a corrupt record is logged and treated as absent.
func loadOrReset[T any](ctx context.Context, s storage.Storage, key string, logger zerolog.Logger) (T, error) {
	state, _, err := load[T](ctx, s, key)
	if err != nil {
		if _, ok := err.(*errCorrupt); ok {
			logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable client state")
			var zero T
			return zero, nil
		}
		return state, err
	}
	return state, nil
}

// State bundles every client state store.
type State struct {
	Cart     *Cart
	Wishlist *Wishlist
	Token    *TokenStore
	Theme    *ThemeStore
}

// Open loads all client state from s.
func Open(ctx context.Context, s storage.Storage, opts Options) (*State, error) {
	cart, err := LoadCart(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	wishlist, err := LoadWishlist(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	token, err := LoadTokenStore(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	theme, err := LoadThemeStore(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	return &State{Cart: cart, Wishlist: wishlist, Token: token, Theme: theme}, nil
}
