// Package storage holds the S3-backed object store for user-uploaded images:
// novel covers and profile pictures.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Key prefixes per image kind. The uploader's user ID is appended so keys
// look like "cover_images/<user-id>/<uuid>.png".
const (
	PrefixCoverImage     = "cover_images"
	PrefixProfilePicture = "profile_pictures"
)

// S3Store uploads and serves image objects from a single bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Store builds the store. Static credentials are optional; without them
// the SDK's default chain (env, shared config, instance role) applies.
func NewS3Store(ctx context.Context, bucket, region, accessKeyID, secretAccessKey string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// Upload stores the image under prefix/userID with a uuid name, keeping the
// original extension. Objects are written public-read so the URL from
// ObjectURL stays valid for as long as the object exists. Returns the key.
func (s *S3Store) Upload(ctx context.Context, prefix, userID, originalFilename string, body io.Reader, contentType string) (string, error) {
	ext := filepath.Ext(originalFilename)
	key := fmt.Sprintf("%s/%s/%s%s", prefix, userID, uuid.New().String(), ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// Delete removes the object. Used when a cover or profile picture is
// replaced.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// ObjectURL returns the permanent public URL for an uploaded object. These
// are what cover_url and avatar_url hold in the database, so they must not
// expire.
func (s *S3Store) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
