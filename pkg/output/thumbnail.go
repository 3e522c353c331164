package output

import (
	"image"

	"github.com/nfnt/resize"
)

// Thumbnail scales img to the given width, keeping the aspect ratio.
// A width of zero or one not smaller than the source returns img unchanged.
func Thumbnail(img image.Image, width int) image.Image {
	if width <= 0 || width >= img.Bounds().Dx() {
		return img
	}
	return resize.Resize(uint(width), 0, img, resize.Lanczos3)
}
