package service

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateSize(t *testing.T) {
	svc := NewMediaService()

	assert.NoError(t, svc.ValidateSize(make([]byte, 1024)))
	assert.NoError(t, svc.ValidateSize(make([]byte, MaxImageBytes)))

	err := svc.ValidateSize(make([]byte, MaxImageBytes+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestValidateFormat(t *testing.T) {
	svc := NewMediaService()

	assert.NoError(t, svc.ValidateFormat("image/png"))
	assert.NoError(t, svc.ValidateFormat("image/jpeg"))

	for _, mime := range []string{"image/gif", "image/webp", "application/pdf", ""} {
		assert.ErrorIs(t, svc.ValidateFormat(mime), ErrUnsupportedImageFormat, mime)
	}
}

func TestMakeThumbnailDimensions(t *testing.T) {
	svc := NewMediaService()

	out, err := svc.MakeThumbnail(jpegBytes(t, 2000, 1500))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestMakeLargeDimensions(t *testing.T) {
	svc := NewMediaService()

	out, err := svc.MakeLarge(pngBytes(t, 640, 480))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 800, cfg.Height)
}

func TestResizeStretchesWithoutPreservingAspect(t *testing.T) {
	svc := NewMediaService()

	// A square input still comes out at exactly 400x300.
	out, err := svc.MakeThumbnail(jpegBytes(t, 500, 500))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestResizeRejectsGarbage(t *testing.T) {
	svc := NewMediaService()

	_, err := svc.MakeThumbnail([]byte("not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImageFormat)
}
