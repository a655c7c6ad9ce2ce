package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// Bucket implements Storage on any S3-compatible object store. Each client
// state record is one object; PutObject replaces it whole, so readers never
// see a partial write.
type Bucket struct {
	client    *s3.Client
	name      string
	publicURL string
	service   string // "R2" or "S3", for error messages
}

func (b *Bucket) Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	if _, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("%s put %s: %w", b.service, key, err)
	}
	return b.URL(key), nil
}

func (b *Bucket) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	switch {
	case isMissingObject(err):
		return nil, ErrFileNotFound(key)
	case err != nil:
		return nil, fmt.Errorf("%s get %s: %w", b.service, key, err)
	}
	return out.Body, nil
}

// Delete succeeds for absent keys; S3 DeleteObject is already idempotent.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("%s delete %s: %w", b.service, key, err)
	}
	return nil
}

// URL is the public object URL, or the bare key when the bucket has none.
func (b *Bucket) URL(key string) string {
	if b.publicURL == "" {
		return key
	}
	return b.publicURL + "/" + key
}

func (b *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	switch {
	case isMissingObject(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%s head %s: %w", b.service, key, err)
	}
	return true, nil
}

// isMissingObject recognises both typed not-found errors and the bodyless 404
// that HeadObject gets from R2.
func isMissingObject(err error) bool {
	if err == nil {
		return false
	}
	var (
		noSuchKey *types.NoSuchKey
		notFound  *types.NotFound
		respErr   *smithyhttp.ResponseError
	)
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return strings.Contains(err.Error(), "StatusCode: 404")
}
