package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/adorn/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method      string
	path        string
	contentType string
	auth        string
	accept      string
	idempotency string
	body        []byte
}

func newBackend(t *testing.T, status int, respBody string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.RequestURI()
		rec.contentType = r.Header.Get("Content-Type")
		rec.auth = r.Header.Get("Authorization")
		rec.accept = r.Header.Get("Accept")
		rec.idempotency = r.Header.Get("Idempotency-Key")
		rec.body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestClient_JSONBody(t *testing.T) {
	srv, rec := newBackend(t, http.StatusOK, `{"data":{"id":"p1"}}`)
	c := New(srv.URL + "/api")

	payload := struct {
		Name string `json:"name"`
	}{Name: "Bracelet"}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, c.Post(context.Background(), "/admin/products", payload, &out))

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/admin/products", rec.path)
	assert.Equal(t, "application/json", rec.contentType)
	assert.Equal(t, "application/json", rec.accept)
	assert.JSONEq(t, `{"name":"Bracelet"}`, string(rec.body))
	assert.Equal(t, "p1", out.Data.ID)
}

func TestClient_MultipartBodyNeverJSON(t *testing.T) {
	srv, rec := newBackend(t, http.StatusCreated, `{"data":{}}`)
	c := New(srv.URL)

	form := NewMultipart().
		AddField("name", "Anklet").
		AddInt("price", 1500).
		AddFile("images", "a.jpg", strings.NewReader("jpegdata"))

	require.NoError(t, c.Post(context.Background(), "/admin/products/with-files", form, nil))

	assert.NotContains(t, rec.contentType, "application/json")
	assert.True(t, strings.HasPrefix(rec.contentType, "multipart/form-data; boundary="), rec.contentType)
	assert.Contains(t, string(rec.body), `name="name"`)
	assert.Contains(t, string(rec.body), "Anklet")
	assert.Contains(t, string(rec.body), `filename="a.jpg"`)
	assert.Contains(t, string(rec.body), "jpegdata")
}

func TestClient_UploadFileUsesFileField(t *testing.T) {
	var field, filename, content string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err == nil {
			defer f.Close()
			data, _ := io.ReadAll(f)
			field, filename, content = "file", hdr.Filename, string(data)
		}
		_, _ = io.WriteString(w, `{"url":"https://cdn.example.com/a.png"}`)
	}))
	defer srv.Close()

	var out struct {
		URL string `json:"url"`
	}
	c := New(srv.URL)
	require.NoError(t, c.UploadFile(context.Background(), "/upload/single", "a.png", strings.NewReader("png"), &out))

	assert.Equal(t, "file", field)
	assert.Equal(t, "a.png", filename)
	assert.Equal(t, "png", content)
	assert.Equal(t, "https://cdn.example.com/a.png", out.URL)
}

func TestClient_BearerToken(t *testing.T) {
	tests := []struct {
		name   string
		tokens TokenSource
		want   string
	}{
		{name: "token attached", tokens: StaticToken("abc"), want: "Bearer abc"},
		{name: "empty token sends no header", tokens: StaticToken(""), want: ""},
		{name: "no token source", tokens: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec := newBackend(t, http.StatusOK, `{}`)
			c := New(srv.URL, WithTokenSource(tt.tokens))
			require.NoError(t, c.Get(context.Background(), "/orders", nil))
			assert.Equal(t, tt.want, rec.auth)
		})
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
		wantAuth    bool
	}{
		{
			name:        "unauthorized is an auth error",
			status:      http.StatusUnauthorized,
			body:        `{"message":"Token expired"}`,
			wantCode:    domain.EUNAUTHORIZED,
			wantMessage: "Token expired",
			wantAuth:    true,
		},
		{
			name:        "forbidden is an auth error",
			status:      http.StatusForbidden,
			body:        `{"message":"Insufficient permissions"}`,
			wantCode:    domain.EFORBIDDEN,
			wantMessage: "Insufficient permissions",
			wantAuth:    true,
		},
		{
			name:        "validation failure",
			status:      http.StatusBadRequest,
			body:        `{"message":"Name is required","details":{"name":"required"}}`,
			wantCode:    domain.EINVALID,
			wantMessage: "Name is required",
		},
		{
			name:        "not found",
			status:      http.StatusNotFound,
			body:        `{"error":"Product not found"}`,
			wantCode:    domain.ENOTFOUND,
			wantMessage: "Product not found",
		},
		{
			name:        "server error keeps backend message",
			status:      http.StatusInternalServerError,
			body:        `{"message":"Database unavailable"}`,
			wantCode:    domain.EUPSTREAM,
			wantMessage: "Database unavailable",
		},
		{
			name:        "non-json body falls back to status",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantCode:    domain.EUPSTREAM,
			wantMessage: "HTTP 502",
		},
		{
			name:        "empty body falls back to status",
			status:      http.StatusConflict,
			body:        ``,
			wantCode:    domain.ECONFLICT,
			wantMessage: "HTTP 409",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBackend(t, tt.status, tt.body)
			c := New(srv.URL)

			err := c.Get(context.Background(), "/products/1", nil)
			require.Error(t, err)

			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
			assert.Equal(t, tt.wantMessage, domain.ErrorMessage(err))
			assert.Equal(t, tt.wantAuth, domain.IsAuthError(err))

			apiErr, ok := domain.AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestClient_ErrorDetailsKept(t *testing.T) {
	srv, _ := newBackend(t, http.StatusUnprocessableEntity, `{"message":"Invalid","code":"VALIDATION","errors":[{"field":"price"}]}`)
	err := New(srv.URL).Get(context.Background(), "/x", nil)

	apiErr, ok := domain.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.JSONEq(t, `[{"field":"price"}]`, string(apiErr.Details))
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url).Get(context.Background(), "/products", nil)
	require.Error(t, err)
	assert.Equal(t, domain.ENETWORK, domain.ErrorCode(err))
	assert.True(t, domain.IsRetryable(err))
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	err := New(srv.URL, WithTimeout(20*time.Millisecond)).Get(context.Background(), "/slow", nil)
	assert.Equal(t, domain.ENETWORK, domain.ErrorCode(err))
}

func TestClient_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: ""},
		{name: "not json", body: "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBackend(t, http.StatusOK, tt.body)
			var out map[string]any
			err := New(srv.URL).Get(context.Background(), "/products", &out)
			assert.Equal(t, domain.EUPSTREAM, domain.ErrorCode(err))
		})
	}
}

func TestClient_NoContent(t *testing.T) {
	srv, rec := newBackend(t, http.StatusNoContent, "")
	var out map[string]any
	require.NoError(t, New(srv.URL).Delete(context.Background(), "/admin/products/p1", &out))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Nil(t, out)
}

func TestClient_RequestOptions(t *testing.T) {
	srv, rec := newBackend(t, http.StatusOK, `{}`)
	c := New(srv.URL, WithUserAgent("adorn-test"))

	require.NoError(t, c.Post(context.Background(), "/payments/create-payment-intent",
		map[string]int{"amount": 5500}, nil, WithIdempotencyKey("key-1")))

	assert.Equal(t, "key-1", rec.idempotency)

	var sent map[string]int
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	assert.Equal(t, 5500, sent["amount"])
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "", Query(map[string]string{"status": ""}))
	assert.Equal(t, "?page=2&status=shipped", Query(map[string]string{"page": "2", "status": "shipped", "search": ""}))
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/products":                            "/products",
		"/products/65a1b2c3d4e5f6a7b8c9d0e1":   "/products/:id",
		"/products/category/earrings":          "/products/category/:id",
		"/admin/products/42/with-files":        "/admin/products/:id/with-files",
		"/orders?page=1&status=pending":        "/orders",
		"/admin/users/stats":                   "/admin/users/stats",
		"/payments/confirm/pi_3Nabc123":        "/payments/confirm/:id",
		"/site-content?page=home&section=hero": "/site-content",
	}
	for in, want := range tests {
		assert.Equal(t, want, routeLabel(in), in)
	}
}
