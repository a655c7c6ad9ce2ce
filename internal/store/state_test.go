package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlist_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	w, err := LoadWishlist(ctx, storage.NewMemoryStorage(), Options{})
	require.NoError(t, err)

	require.NoError(t, w.Add(ctx, product("p1", 1000)))
	require.NoError(t, w.Add(ctx, product("p1", 1000)))

	assert.Equal(t, 1, w.Len())
	assert.True(t, w.Contains("p1"))
	assert.False(t, w.Contains("p2"))
}

func TestWishlist_RemoveAndToggle(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	w, err := LoadWishlist(ctx, s, Options{})
	require.NoError(t, err)

	require.NoError(t, w.Remove(ctx, "absent"))

	added, err := w.Toggle(ctx, product("p1", 1000))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = w.Toggle(ctx, product("p1", 1000))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Zero(t, w.Len())

	require.NoError(t, w.Add(ctx, product("p2", 1000)))
	reloaded, err := LoadWishlist(ctx, s, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(reloaded.Items()))
}

func TestWishlist_WriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	w, err := LoadWishlist(ctx, s, Options{})
	require.NoError(t, err)

	s.PutErr = assert.AnError
	assert.Error(t, w.Add(ctx, product("p1", 1000)))
	assert.False(t, w.Contains("p1"))
}

func TestWishlist_ToggleWriteFailure(t *testing.T) {
	tests := []struct {
		name      string
		preloaded bool
	}{
		{name: "add fails", preloaded: false},
		{name: "remove fails", preloaded: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := storage.NewMemoryStorage()
			w, err := LoadWishlist(ctx, s, Options{})
			require.NoError(t, err)
			if tt.preloaded {
				require.NoError(t, w.Add(ctx, product("p1", 1000)))
			}

			s.PutErr = assert.AnError
			present, err := w.Toggle(ctx, product("p1", 1000))

			assert.Error(t, err)
			assert.Equal(t, tt.preloaded, present)
			assert.Equal(t, tt.preloaded, w.Contains("p1"))
		})
	}
}

func TestWishlist_ToggleRequiresID(t *testing.T) {
	w, err := LoadWishlist(context.Background(), storage.NewMemoryStorage(), Options{})
	require.NoError(t, err)

	_, err = w.Toggle(context.Background(), domain.Product{})
	assert.True(t, domain.IsValidationError(err))
	assert.Zero(t, w.Len())
}

func TestWishlist_ConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	w, err := LoadWishlist(ctx, s, Options{})
	require.NoError(t, err)

	const toggles = 50
	var added atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			present, err := w.Toggle(ctx, product("p1", 1000))
			assert.NoError(t, err)
			if present {
				added.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(toggles/2), added.Load(), "adds and removes alternate")
	assert.False(t, w.Contains("p1"))

	reloaded, err := LoadWishlist(ctx, s, Options{})
	require.NoError(t, err)
	assert.Zero(t, reloaded.Len())
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()

	ts, err := LoadTokenStore(ctx, s, Options{})
	require.NoError(t, err)

	tok, err := ts.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "no token is not an error")

	valid := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, ts.SetToken(ctx, valid))

	reloaded, err := LoadTokenStore(ctx, s, Options{})
	require.NoError(t, err)
	tok, err = reloaded.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, valid, tok)

	require.NoError(t, reloaded.Clear(ctx))
	tok, _ = reloaded.Token(ctx)
	assert.Empty(t, tok)
}

func TestTokenStore_ExpiredTokenDropped(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	ts, err := LoadTokenStore(ctx, s, Options{})
	require.NoError(t, err)

	expired := signedToken(t, time.Now().Add(-time.Minute))
	require.NoError(t, ts.SetToken(ctx, expired))
	assert.True(t, ts.Expired(time.Now()))

	tok, err := ts.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	reloaded, err := LoadTokenStore(ctx, s, Options{})
	require.NoError(t, err)
	tok, _ = reloaded.Token(ctx)
	assert.Empty(t, tok, "expired token is removed from storage too")
}

func TestTokenStore_OpaqueTokenKept(t *testing.T) {
	ctx := context.Background()
	ts, err := LoadTokenStore(ctx, storage.NewMemoryStorage(), Options{})
	require.NoError(t, err)

	require.NoError(t, ts.SetToken(ctx, "opaque-session-token"))
	assert.False(t, ts.Expired(time.Now().Add(24*time.Hour)))

	tok, err := ts.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-session-token", tok)
}

func TestThemeStore(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()

	theme, err := LoadThemeStore(ctx, s, Options{})
	require.NoError(t, err)
	assert.True(t, theme.IsDark(), "dark by default")

	dark, err := theme.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, dark)

	reloaded, err := LoadThemeStore(ctx, s, Options{})
	require.NoError(t, err)
	assert.False(t, reloaded.IsDark())
}

func TestOpen_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()

	st, err := Open(ctx, s, Options{})
	require.NoError(t, err)

	require.NoError(t, st.Cart.AddItem(ctx, product("p1", 1000)))
	require.NoError(t, st.Wishlist.Add(ctx, product("p2", 1000)))
	require.NoError(t, st.Theme.SetDark(ctx, false))
	require.NoError(t, st.Token.SetToken(ctx, "tok"))

	for _, key := range []string{CartKey, WishlistKey, ThemeKey, TokenKey} {
		_, ok := s.Raw(key)
		assert.True(t, ok, key)
	}

	require.NoError(t, st.Cart.Clear(ctx))
	again, err := Open(ctx, s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, again.Wishlist.Len())
	assert.False(t, again.Theme.IsDark())
}
