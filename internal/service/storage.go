package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/tastebook/backend/config"
)

var ErrStoreUnavailable = errors.New("object store unavailable")

// S3Store uploads and deletes blobs in the configured bucket. It is
// content-agnostic: key construction belongs to the caller. The underlying
// client is built once at startup and shared read-only across requests.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3Store(cfg *config.S3Config) *S3Store {
	return &S3Store{
		client: cfg.Client,
		bucket: cfg.BucketName,
		region: cfg.Region,
	}
}

// Upload stores data under key and returns the public URL. Transport
// failures are wrapped as ErrStoreUnavailable; retries are the caller's call.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("[S3Store] upload of %s failed: %v", key, err)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s.publicURL(key), nil
}

// Delete removes the blob at key. Deleting a missing key is not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Printf("[S3Store] delete of %s failed: %v", key, err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// RecipeImageKeys returns the deterministic object keys for a recipe's two
// derivatives. Re-uploading for the same recipe overwrites in place.
func RecipeImageKeys(authorID, recipeID uuid.UUID) (thumbnailKey, largeKey string) {
	prefix := fmt.Sprintf("%s/%s", authorID, recipeID)
	return prefix + "/thumbnail.jpg", prefix + "/large.jpg"
}

// KeyFromURL recovers the object key from a public URL produced by Upload.
func KeyFromURL(publicURL string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("invalid object URL %q: %w", publicURL, err)
	}
	key, err := url.PathUnescape(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid object URL %q: %w", publicURL, err)
	}
	if key == "" {
		return "", fmt.Errorf("object URL %q carries no key", publicURL)
	}
	return key, nil
}
