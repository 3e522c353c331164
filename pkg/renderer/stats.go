package renderer

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels      int     // Total number of pixels rendered
	HitPixels        int     // Pixels whose ray hit at least one sphere
	ShadowedPixels   int     // Hit pixels whose visible point is occluded
	SphereTests      int     // Primary ray-sphere intersection tests
	MeanBrightness   float64 // Mean brightness over hit pixels
	StdDevBrightness float64 // Standard deviation of brightness over hit pixels

	brightness []float64
}

// NewRenderStats returns empty statistics
func NewRenderStats() RenderStats {
	return RenderStats{}
}

// AddPixel records the result of a single pixel
func (s *RenderStats) AddPixel(result PixelResult) {
	s.TotalPixels++
	s.SphereTests += result.SphereTests
	if !result.Hit {
		return
	}
	s.HitPixels++
	if !result.Lit {
		s.ShadowedPixels++
	}
	s.brightness = append(s.brightness, result.Brightness)
}

// Merge folds other into s
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.HitPixels += other.HitPixels
	s.ShadowedPixels += other.ShadowedPixels
	s.SphereTests += other.SphereTests
	s.brightness = append(s.brightness, other.brightness...)
}

// Finalize computes the brightness summary
func (s *RenderStats) Finalize() {
	switch len(s.brightness) {
	case 0:
		s.MeanBrightness, s.StdDevBrightness = 0, 0
	case 1:
		s.MeanBrightness, s.StdDevBrightness = s.brightness[0], 0
	default:
		s.MeanBrightness, s.StdDevBrightness = stat.MeanStdDev(s.brightness, nil)
	}
}

// HitRatio returns the fraction of pixels that hit a sphere
func (s RenderStats) HitRatio() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.HitPixels) / float64(s.TotalPixels)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of img in [0,1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}

	luminance := make([]float64, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			luminance = append(luminance,
				(0.2126*float64(r)+0.7152*float64(g)+0.0722*float64(b))/65535.0)
		}
	}
	return stat.Mean(luminance, nil)
}
