package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/dukerupert/adorn/internal/apiclient"
	"github.com/dukerupert/adorn/internal/domain"
)

// UploadService posts files and returns their public URL.
type UploadService interface {
	Upload(ctx context.Context, path, filename string, r io.Reader) (string, error)
	UploadSingle(ctx context.Context, filename string, r io.Reader) (string, error)
}

type uploadService struct {
	api Requester
}

func NewUploadService(api Requester) (UploadService, error) {
	if api == nil {
		return nil, errNilRequester
	}
	return &uploadService{api: api}, nil
}

// uploadWire accepts both a bare {url} and the usual envelope.
type uploadWire struct {
	URL  string `json:"url"`
	Data *struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Upload stores the file under path (a folder hint such as "products").
func (s *uploadService) Upload(ctx context.Context, path, filename string, r io.Reader) (string, error) {
	const op = "upload.file"
	if path == "" {
		return "", domain.NewValidationError(op, "path", "is required")
	}
	return s.upload(ctx, op, "/upload?"+url.Values{"path": {path}}.Encode(), filename, r)
}

func (s *uploadService) UploadSingle(ctx context.Context, filename string, r io.Reader) (string, error) {
	return s.upload(ctx, "upload.single", "/upload/single", filename, r)
}

func (s *uploadService) upload(ctx context.Context, op, path, filename string, r io.Reader) (string, error) {
	if filename == "" || r == nil {
		return "", domain.NewValidationError(op, "file", "is required")
	}

	var w uploadWire
	form := apiclient.NewMultipart().AddFile("file", filename, r)
	if err := s.api.Do(ctx, http.MethodPost, path, form, &w); err != nil {
		return "", relabel(err, op)
	}

	switch {
	case w.URL != "":
		return w.URL, nil
	case w.Data != nil && w.Data.URL != "":
		return w.Data.URL, nil
	}
	return "", errShape(op, errors.New("missing url"))
}
