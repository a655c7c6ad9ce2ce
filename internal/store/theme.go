package store

import (
	"context"
	"sync"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/storage"
)

type themeState struct {
	IsDark bool `json:"isDark"`
}

// ThemeStore persists the dark/light preference. Dark is the default.
type ThemeStore struct {
	mu      sync.Mutex
	storage storage.Storage
	isDark  bool
}

func LoadThemeStore(ctx context.Context, s storage.Storage, opts Options) (*ThemeStore, error) {
	state, found, err := load[themeState](ctx, s, ThemeKey)
	if err != nil {
		if _, ok := err.(*errCorrupt); !ok {
			return nil, err
		}
		opts.Logger.Warn().Err(err).Msg("discarding unreadable theme preference")
		found = false
	}
	if !found {
		state.IsDark = true
	}
	return &ThemeStore{storage: s, isDark: state.IsDark}, nil
}

func (t *ThemeStore) IsDark() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isDark
}

func (t *ThemeStore) SetDark(ctx context.Context, dark bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := save(ctx, t.storage, ThemeKey, themeState{IsDark: dark}); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "theme.save", "Could not save your theme")
	}
	t.isDark = dark
	return nil
}

// Toggle flips the preference and returns the new value.
func (t *ThemeStore) Toggle(ctx context.Context) (bool, error) {
	t.mu.Lock()
	next := !t.isDark
	t.mu.Unlock()

	if err := t.SetDark(ctx, next); err != nil {
		return !next, err
	}
	return next, nil
}
