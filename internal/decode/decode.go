// Package decode turns files on disk into pixel buffers at the requested
// resolution tier.
package decode

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/malramsay64/decimator/internal/texture"
)

// ThumbnailSize is the bounding box in pixels for the thumbnail tier.
const ThumbnailSize = 240

// File decodes the image at path at full resolution.
func File(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Scaled decodes the image at path and scales it down to fit within
// maxDim on the longer side, preserving aspect ratio. Images already
// within the bound are returned as decoded.
func Scaled(path string, maxDim int) (image.Image, error) {
	img, err := File(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img, nil
	}

	var tw, th int
	if w >= h {
		tw = maxDim
		th = h * maxDim / w
	} else {
		th = maxDim
		tw = w * maxDim / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// Thumbnail decodes the image at path at the thumbnail tier.
func Thumbnail(path string) (image.Image, error) {
	return Scaled(path, ThumbnailSize)
}

// ForTier returns a texture.DecodeFunc decoding path at the given tier.
func ForTier(path string, tier texture.Tier) texture.DecodeFunc {
	if tier == texture.TierThumbnail {
		return func() (image.Image, error) { return Thumbnail(path) }
	}
	return func() (image.Image, error) { return File(path) }
}
