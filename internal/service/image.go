package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// Derivative dimensions and encoding. Both sizes stretch to the exact target
// dimensions (no aspect-ratio preservation) to match the published frontend
// layout, which expects fixed 4:3 and 3:2 frames.
const (
	MaxImageBytes = 1 << 20 // 1 MiB

	thumbnailWidth  = 400
	thumbnailHeight = 300
	largeWidth      = 1200
	largeHeight     = 800
	jpegQuality     = 80
)

var (
	ErrImageTooLarge          = errors.New("image file size is bigger than 1 MB")
	ErrUnsupportedImageFormat = errors.New("image type should only be png or jpeg")
)

// MediaService validates uploads and produces the two fixed-size JPEG
// derivatives. It is stateless and does no I/O beyond CPU-bound work.
type MediaService struct{}

func NewMediaService() *MediaService {
	return &MediaService{}
}

// ValidateSize rejects inputs over MaxImageBytes before any decoding happens.
func (s *MediaService) ValidateSize(data []byte) error {
	if len(data) > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// ValidateFormat checks the declared MIME type against the png/jpeg allow-list.
func (s *MediaService) ValidateFormat(mimeType string) error {
	switch mimeType {
	case "image/png", "image/jpeg":
		return nil
	}
	return ErrUnsupportedImageFormat
}

// MakeThumbnail renders the 400x300 derivative.
func (s *MediaService) MakeThumbnail(data []byte) ([]byte, error) {
	return s.resize(data, thumbnailWidth, thumbnailHeight)
}

// MakeLarge renders the 1200x800 derivative.
func (s *MediaService) MakeLarge(data []byte) ([]byte, error) {
	return s.resize(data, largeWidth, largeHeight)
}

func (s *MediaService) resize(data []byte, width, height int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImageFormat, err)
	}

	resized := imaging.Resize(img, width, height, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
