package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket answers path-style object requests for bucket "state". It only
// tracks which keys exist; bodies are not inspected.
func fakeBucket(t *testing.T) *httptest.Server {
	t.Helper()
	var (
		mu   sync.Mutex
		keys = map[string]bool{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := strings.CutPrefix(r.URL.Path, "/state/")
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		io.Copy(io.Discard, r.Body)

		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			keys[key] = true
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			delete(keys, key)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodHead, http.MethodGet:
			if !keys[key] {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				if r.Method == http.MethodGet {
					io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
				}
				return
			}
			w.WriteHeader(http.StatusOK)
			if r.Method == http.MethodGet {
				io.WriteString(w, `{"state":{},"version":0}`)
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBucket(t *testing.T) {
	ctx := context.Background()
	srv := fakeBucket(t)

	b, err := NewR2Storage(ctx, R2Config{
		AccessKeyID: "test",
		SecretKey:   "test",
		BucketName:  "state",
		Endpoint:    srv.URL,
		PublicURL:   "https://cdn.example.com/",
	})
	require.NoError(t, err)

	_, err = b.Get(ctx, "cart-storage")
	assert.True(t, IsNotFound(err), "got %v", err)

	ok, err := b.Exists(ctx, "cart-storage")
	require.NoError(t, err)
	assert.False(t, ok)

	url, err := b.Put(ctx, "cart-storage", strings.NewReader(`{"state":{},"version":0}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/cart-storage", url)

	ok, err = b.Exists(ctx, "cart-storage")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := b.Get(ctx, "cart-storage")
	require.NoError(t, err)
	rc.Close()

	require.NoError(t, b.Delete(ctx, "cart-storage"))
	require.NoError(t, b.Delete(ctx, "cart-storage"))
	_, err = b.Get(ctx, "cart-storage")
	assert.True(t, IsNotFound(err))
}

func TestNewR2Storage_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  R2Config
		want error
	}{
		{"no account or endpoint", R2Config{AccessKeyID: "k", SecretKey: "s", BucketName: "b"}, ErrR2AccountIDRequired},
		{"no credentials", R2Config{AccountID: "a", BucketName: "b"}, ErrR2CredentialsRequired},
		{"no bucket", R2Config{AccountID: "a", AccessKeyID: "k", SecretKey: "s"}, ErrR2BucketRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewR2Storage(ctx, tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
