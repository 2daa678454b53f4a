package ioutils

import (
	"context"
	"fmt"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"math"
	"os"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// DefaultCoverQuality is the JPEG quality used for embedded covers.
const DefaultCoverQuality = 75

// ImageService provides image processing operations for cover art.
//
// ImageService turns whatever the server (or the audio file) handed us into a
// small, deterministic cover that every player can decode:
//   - scaled to a fixed width, height following the source aspect ratio
//   - Catmull-Rom resampling
//   - baseline (non-progressive) JPEG at a fixed quality
//   - no metadata carried over from the source
//
// Example usage:
//
//	svc := NewImageService()
//	err := svc.ResizeFile(ctx, "/music/.cover/abc.orig", "/music/.cover/abc_500.jpeg", 500)
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService using DefaultCoverQuality.
func NewImageService() *ImageService {
	return &ImageService{quality: DefaultCoverQuality}
}

// ResizeFile decodes src, scales it to width pixels wide and writes the result
// to dst as JPEG.
//
// dst is written atomically: on any failure it does not exist afterwards.
//
// Parameters:
//   - ctx: Context for cancellation, checked before decoding
//   - src: Source image (JPEG, PNG, GIF, WebP, BMP or TIFF)
//   - dst: Destination JPEG path
//   - width: Target width in pixels, must be positive
//
// Example:
//
//	// A 1200x1000 source becomes 500x417
//	err := svc.ResizeFile(ctx, raw, resized, 500)
func (s *ImageService) ResizeFile(ctx context.Context, src, dst string, width int) error {
	if width <= 0 {
		return fmt.Errorf("resize %s: invalid width %d", src, width)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}

	scaled := s.scale(img, width)

	return WriteAtomic(dst, func(tmp string) error {
		out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		// image/jpeg only writes baseline JPEGs without EXIF/ICC segments.
		if err := jpeg.Encode(out, scaled, &jpeg.Options{Quality: s.quality}); err != nil {
			_ = out.Close()
			return fmt.Errorf("encode %s: %w", dst, err)
		}
		return out.Close()
	})
}

// ScaledSize returns the target dimensions for a srcW x srcH image scaled to
// width. The height is rounded and never drops below one pixel.
func ScaledSize(srcW, srcH, width int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return width, width
	}
	height := int(math.Round(float64(srcH) * float64(width) / float64(srcW)))
	if height < 1 {
		height = 1
	}
	return width, height
}

func (s *ImageService) scale(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	w, h := ScaledSize(bounds.Dx(), bounds.Dy(), width)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
