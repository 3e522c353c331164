package core

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Color is an 8-bit per channel RGBA value
type Color struct {
	R, G, B, A uint8
}

// NewColor creates an opaque color
func NewColor(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Scale multiplies the RGB channels by a brightness factor and rounds to the
// nearest integer. Alpha is left unchanged. k is expected in [0,1].
func (c Color) Scale(k float64) Color {
	return Color{
		R: toChannel(float64(c.R) * k),
		G: toChannel(float64(c.G) * k),
		B: toChannel(float64(c.B) * k),
		A: c.A,
	}
}

// Equal reports exact channel equality
func (c Color) Equal(other Color) bool {
	return c == other
}

// ToRGBA converts to the standard library color type
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Hex returns the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into an opaque color
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return NewColor(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// toChannel rounds half away from zero and saturates to [0,255]; NaN maps to 0
func toChannel(v float64) uint8 {
	v = math.Round(v)
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
