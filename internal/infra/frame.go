package infra

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/eliteGoblin/focusd/focuscam/internal/domain"
)

const (
	DefaultMaxFrameWidth = 640
	DefaultJPEGQuality   = 70
)

// JPEGEncoder downsamples frames wider than MaxWidth, keeping the aspect
// ratio, and compresses them to JPEG.
type JPEGEncoder struct {
	MaxWidth int
	Quality  int
}

// NewJPEGEncoder creates an encoder. Non-positive values select the defaults.
func NewJPEGEncoder(maxWidth, quality int) *JPEGEncoder {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxFrameWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &JPEGEncoder{MaxWidth: maxWidth, Quality: quality}
}

// Encode scales and compresses img.
func (e *JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("nil frame")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	scaled := img
	if bounds.Dx() > e.MaxWidth {
		height := bounds.Dy() * e.MaxWidth / bounds.Dx()
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, e.MaxWidth, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		scaled = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: e.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

var _ domain.FrameEncoder = (*JPEGEncoder)(nil)
