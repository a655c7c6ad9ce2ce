package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/adorn/internal/telemetry"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generates an ID", incoming: ""},
		{name: "keeps the caller's ID", incoming: "req-abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(RequestID)

			var seen string
			e.GET("/", func(c echo.Context) error {
				seen = GetRequestID(c.Request().Context())
				return c.NoContent(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := serve(e, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, seen)
			}
		})
	}
}

func TestWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	e := echo.New()
	e.Use(RequestID, WithRequestLogger(base))
	e.GET("/api/cart", func(c echo.Context) error {
		GetLogger(c.Request().Context()).Info().Msg("inside handler")
		return c.NoContent(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	serve(e, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var inner, done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inner))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &done))

	assert.Equal(t, "req-1", inner["request_id"])
	assert.Equal(t, "/api/cart", inner["path"])
	assert.Equal(t, "http request", done["message"])
	assert.Equal(t, float64(http.StatusTeapot), done["status"])
	assert.Equal(t, "warn", done["level"])
}

func TestGetLogger_Fallback(t *testing.T) {
	var buf bytes.Buffer
	fallback := zerolog.New(&buf)

	GetLogger(httptest.NewRequest(http.MethodGet, "/", nil).Context(), fallback).Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry(), "test")

	e := echo.New()
	e.Use(Metrics(m))
	e.GET("/api/cart/items/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	serve(e, httptest.NewRequest(http.MethodGet, "/api/cart/items/p1", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/api/cart/items/p2", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/cart/items/:id", "204")))
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders(DefaultSecurityHeadersConfig()))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestMaxBodySize(t *testing.T) {
	e := echo.New()
	e.Use(MaxBodySize(8))
	e.POST("/", func(c echo.Context) error {
		if _, err := io.ReadAll(c.Request().Body); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})

	var gotErr error
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		gotErr = err
		c.NoContent(http.StatusRequestEntityTooLarge)
	}

	rec := serve(e, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large a body")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.ErrorIs(t, gotErr, ErrBodyTooLarge)
}
