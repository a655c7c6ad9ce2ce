package store

import (
	"context"
	"sync"
	"time"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/dukerupert/adorn/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

type tokenState struct {
	Token string `json:"token"`
}

// TokenStore holds the admin bearer token. There is no refresh flow: once
// the token expires the user has to log in again.
type TokenStore struct {
	mu      sync.Mutex
	storage storage.Storage
	logger  zerolog.Logger
	token   string
	now     func() time.Time
}

func LoadTokenStore(ctx context.Context, s storage.Storage, opts Options) (*TokenStore, error) {
	state, err := loadOrReset[tokenState](ctx, s, TokenKey, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &TokenStore{
		storage: s,
		logger:  opts.Logger.With().Str("store", "token").Logger(),
		token:   state.Token,
		now:     time.Now,
	}, nil
}

// Token returns the stored token, or "" when there is none. An expired JWT
// is dropped so requests go out unauthenticated and the backend answers 401.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token == "" {
		return "", nil
	}
	if exp, ok := tokenExpiry(t.token); ok && !t.now().Before(exp) {
		t.logger.Info().Time("expired_at", exp).Msg("stored token expired, discarding")
		if err := t.set(ctx, ""); err != nil {
			return "", err
		}
		return "", nil
	}
	return t.token, nil
}

// SetToken stores a token issued at login.
func (t *TokenStore) SetToken(ctx context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set(ctx, token)
}

// Clear forgets the token (logout).
func (t *TokenStore) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set(ctx, "")
}

// Expired reports whether the stored token carries an exp claim at or before now.
// Tokens without a readable exp never expire client-side.
func (t *TokenStore) Expired(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	exp, ok := tokenExpiry(t.token)
	return ok && !now.Before(exp)
}

// ExpiresAt returns the exp claim, if the token has one.
func (t *TokenStore) ExpiresAt() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tokenExpiry(t.token)
}

func (t *TokenStore) set(ctx context.Context, token string) error {
	if err := save(ctx, t.storage, TokenKey, tokenState{Token: token}); err != nil {
		t.logger.Error().Err(err).Msg("failed to persist token")
		return domain.WrapError(err, domain.EINTERNAL, "token.save", "Could not save your session")
	}
	t.token = token
	return nil
}

// tokenExpiry reads exp without verifying the signature; only the backend
// can verify the token.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
