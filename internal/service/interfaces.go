package service

import "context"

// ObjectStore is the blob-store capability the recipe pipeline depends on.
// *S3Store is the production implementation; tests substitute fakes.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// MediaProcessor validates uploads and renders the two JPEG derivatives.
type MediaProcessor interface {
	ValidateSize(data []byte) error
	ValidateFormat(mimeType string) error
	MakeThumbnail(data []byte) ([]byte, error)
	MakeLarge(data []byte) ([]byte, error)
}
