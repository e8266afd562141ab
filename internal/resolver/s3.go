package resolver

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/averden/mediapull/internal/assets"
)

// DefaultPresignExpiry bounds how long a resolved download URL stays valid.
const DefaultPresignExpiry = 1 * time.Hour

// S3Resolver turns s3://bucket/key origins into ready-to-use presigned GET
// URLs and synthesizes the asset metadata the planner needs from a HEAD
// request. It is the concrete stand-in for the collaborator that supplies
// resolved URLs.
type S3Resolver struct {
	client  *s3.Client
	presign *s3.PresignClient
	expiry  time.Duration
	log     zerolog.Logger
}

func NewS3Resolver(ctx context.Context, profile string, logger zerolog.Logger) (*S3Resolver, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(profile),
		config.WithRetryMode("adaptive"),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Resolver{
		client:  client,
		presign: s3.NewPresignClient(client),
		expiry:  DefaultPresignExpiry,
		log:     logger,
	}, nil
}

// Resolve builds a downloadable Asset for the object at the given s3:// URL.
func (r *S3Resolver) Resolve(ctx context.Context, rawURL string) (*assets.Asset, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	head, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("error getting S3 object info: %w", err)
	}
	if head.ContentLength == nil {
		return nil, fmt.Errorf("S3 object s3://%s/%s reports no size", bucket, key)
	}

	presigned, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.expiry))
	if err != nil {
		return nil, fmt.Errorf("error presigning S3 object URL: %w", err)
	}
	r.log.Debug().Str("op", "resolver/s3").Msgf("Resolved s3://%s/%s (%d bytes)", bucket, key, *head.ContentLength)

	id := uuid.NewString()
	if head.ETag != nil {
		id = strings.Trim(*head.ETag, `"`)
	}
	return &assets.Asset{
		ID:                id,
		Name:              path.Base(key),
		Kind:              "file",
		UploadCompletedAt: head.LastModified,
		Filesize:          *head.ContentLength,
		OriginalURL:       presigned.URL,
	}, nil
}

// ParseS3URL splits s3://bucket/key (the scheme is optional) into its parts.
func ParseS3URL(rawURL string) (string, string, error) {
	trimmed := strings.TrimPrefix(rawURL, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format: %s", rawURL)
	}
	return parts[0], parts[1], nil
}
