package output

import (
	"image"
	"image/draw"

	"github.com/df07/go-shadowcaster/pkg/core"
)

// ImageSink collects shaded pixels into an RGBA image.
// Pixels that are never set keep the background color.
type ImageSink struct {
	img *image.RGBA
}

// NewImageSink creates a width x height image filled with background
func NewImageSink(width, height int, background core.Color) *ImageSink {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background.ToRGBA()), image.Point{}, draw.Src)
	return &ImageSink{img: img}
}

// Set writes a pixel. Concurrent calls are safe for distinct pixels.
func (s *ImageSink) Set(x, y int, c core.Color) {
	s.img.SetRGBA(x, y, c.ToRGBA())
}

// Image returns the underlying image
func (s *ImageSink) Image() *image.RGBA {
	return s.img
}
