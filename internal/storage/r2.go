package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Config configures a Cloudflare R2 bucket.
type R2Config struct {
	AccountID   string
	AccessKeyID string
	SecretKey   string
	BucketName  string
	PublicURL   string
	Endpoint    string // overrides the account endpoint
}

// NewR2Storage connects to R2 with static credentials.
func NewR2Storage(ctx context.Context, cfg R2Config) (*Bucket, error) {
	switch {
	case cfg.AccountID == "" && cfg.Endpoint == "":
		return nil, ErrR2AccountIDRequired
	case cfg.AccessKeyID == "" || cfg.SecretKey == "":
		return nil, ErrR2CredentialsRequired
	case cfg.BucketName == "":
		return nil, ErrR2BucketRequired
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://" + cfg.AccountID + ".r2.cloudflarestorage.com"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Bucket{
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}),
		name:      cfg.BucketName,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		service:   "R2",
	}, nil
}
