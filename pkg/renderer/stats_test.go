package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestCalculateAverageLuminance(t *testing.T) {
	// Create a 2x2 image
	// Top-left: Red (1, 0, 0) -> Lum = 0.2126
	// Top-right: Green (0, 1, 0) -> Lum = 0.7152
	// Bottom-left: Blue (0, 0, 1) -> Lum = 0.0722
	// Bottom-right: Black (0, 0, 0) -> Lum = 0.0

	// Expected average: (0.2126 + 0.7152 + 0.0722 + 0.0) / 4 = 1.0 / 4 = 0.25

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 0.25
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestCalculateAverageLuminance_White(t *testing.T) {
	// 1x1 White pixel -> Lum = 1.0
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 1.0
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestRenderStats_AddMergeFinalize(t *testing.T) {
	a := NewRenderStats()
	a.AddPixel(PixelResult{SphereTests: 3})
	a.AddPixel(PixelResult{Hit: true, Lit: true, Brightness: 1.0, SphereTests: 3})

	b := NewRenderStats()
	b.AddPixel(PixelResult{Hit: true, Lit: false, Brightness: 0, SphereTests: 3})
	b.AddPixel(PixelResult{Hit: true, Lit: true, Brightness: 0.5, SphereTests: 3})

	a.Merge(b)
	a.Finalize()

	if a.TotalPixels != 4 || a.HitPixels != 3 || a.ShadowedPixels != 1 || a.SphereTests != 12 {
		t.Errorf("Unexpected counters %+v", a)
	}
	if math.Abs(a.MeanBrightness-0.5) > 1e-12 {
		t.Errorf("Expected mean brightness 0.5, got %f", a.MeanBrightness)
	}
	// Sample standard deviation of {1, 0, 0.5}
	if math.Abs(a.StdDevBrightness-0.5) > 1e-12 {
		t.Errorf("Expected std dev 0.5, got %f", a.StdDevBrightness)
	}
	if math.Abs(a.HitRatio()-0.75) > 1e-12 {
		t.Errorf("Expected hit ratio 0.75, got %f", a.HitRatio())
	}
}

func TestRenderStats_Empty(t *testing.T) {
	s := NewRenderStats()
	s.Finalize()
	if s.MeanBrightness != 0 || s.StdDevBrightness != 0 || s.HitRatio() != 0 {
		t.Errorf("Expected zero stats, got %+v", s)
	}
}
