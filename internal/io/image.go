package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Snapshot formats accepted by EncodeSnapshot.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// ImageService decodes animation frames and encodes canvas snapshots.
//
// Example usage:
//
//	svc := NewImageService()
//
//	// Decode a frame, shrinking it to at most 1024 pixels per side
//	frame, _ := svc.DecodeFrame(ctx, data, 1024)
//
//	// Save what is on screen
//	png, _ := svc.EncodeSnapshot(ctx, canvas.Snapshot(), FormatPNG)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// DecodeFrame decodes a frame image (PNG, JPEG, GIF, BMP or WebP).
//
// If maxSize is positive and the frame is larger than maxSize on either
// side, it is downscaled to fit maxSize x maxSize with its aspect ratio
// preserved, using Catmull-Rom interpolation.
//
// Example:
//
//	// A 1500x1000 frame becomes 1000x666
//	frame, err := svc.DecodeFrame(ctx, data, 1000)
func (s *ImageService) DecodeFrame(ctx context.Context, data []byte, maxSize int) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return img, nil
	}

	ratio := float64(width) / float64(height)
	if ratio < 1 {
		// Height is the limiting factor
		width = max(int(float64(maxSize)*ratio), 1)
		height = maxSize
	} else {
		// Width is the limiting factor
		height = max(int(float64(maxSize)/ratio), 1)
		width = maxSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return dst, nil
}

// EncodeSnapshot encodes img as PNG or JPEG (quality 90).
func (s *ImageService) EncodeSnapshot(ctx context.Context, img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case FormatPNG, "":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case FormatJPEG, "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}

	return buf.Bytes(), nil
}
