package renderer

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/df07/go-shadowcaster/pkg/core"
	"github.com/df07/go-shadowcaster/pkg/geometry"
	"github.com/df07/go-shadowcaster/pkg/lights"
	"github.com/df07/go-shadowcaster/pkg/output"
)

// CompositeMode selects how several spheres hit by the same pixel ray combine
type CompositeMode string

const (
	// CompositeNearest paints the sphere with the smallest ray parameter
	CompositeNearest CompositeMode = "nearest"
	// CompositeOverwrite paints every hit sphere in scene order, so the last
	// hit wins regardless of depth
	CompositeOverwrite CompositeMode = "overwrite"
)

// ParseCompositeMode converts a config or flag value to a CompositeMode
func ParseCompositeMode(s string) (CompositeMode, error) {
	switch mode := CompositeMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case CompositeNearest, CompositeOverwrite:
		return mode, nil
	case "":
		return CompositeNearest, nil
	default:
		return "", fmt.Errorf("unknown composite mode %q (want %q or %q)", s, CompositeNearest, CompositeOverwrite)
	}
}

// Scene interface to avoid circular imports
type Scene interface {
	GetSpheres() []geometry.Sphere
	GetLight() lights.PointLight
	GetBackground() core.Color
	GetSize() (width, height int)
}

// PixelSink receives shaded pixels. It is only called for pixels whose ray
// hits at least one sphere.
type PixelSink interface {
	Set(x, y int, c core.Color)
}

// RenderConfig contains rendering configuration
type RenderConfig struct {
	Composite  CompositeMode
	TileSize   int // Size of each tile in pixels
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Composite:  CompositeNearest,
		TileSize:   64,
		NumWorkers: 0,
	}
}

// PixelResult describes what a single pixel ray produced
type PixelResult struct {
	Hit         bool
	Lit         bool    // False when the visible point is shadowed
	Brightness  float64 // Brightness of the painted point
	SphereTests int     // Ray-sphere intersection tests for the primary ray
}

// Raytracer casts one orthographic ray per pixel into a scene of spheres
type Raytracer struct {
	scene     Scene
	width     int
	height    int
	spheres []geometry.Sphere
	light   lights.PointLight
	config  RenderConfig
	logger  core.Logger
}

// NewRaytracer creates a new raytracer. The scene is read once; it must not
// change while rendering.
func NewRaytracer(scene Scene, config RenderConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if config.Composite == "" {
		config.Composite = CompositeNearest
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultRenderConfig().TileSize
	}

	width, height := scene.GetSize()
	return &Raytracer{
		scene:   scene,
		width:   width,
		height:  height,
		spheres: scene.GetSpheres(),
		light:   scene.GetLight(),
		config:  config,
		logger:  logger,
	}
}

// PixelRay returns the ray for pixel (x, y): origin (x, y, 0) looking down +z
func PixelRay(x, y int) core.Ray {
	return core.NewRay(core.NewVec3(float64(x), float64(y), 0), core.NewVec3(0, 0, 1))
}

// ShadePixel computes the color for pixel (x, y)
func (rt *Raytracer) ShadePixel(x, y int) (core.Color, PixelResult) {
	ray := PixelRay(x, y)
	if rt.config.Composite == CompositeOverwrite {
		return rt.shadeOverwrite(ray)
	}
	return rt.shadeNearest(ray)
}

// shadeNearest paints the closest sphere along the ray
func (rt *Raytracer) shadeNearest(ray core.Ray) (core.Color, PixelResult) {
	result := PixelResult{SphereTests: len(rt.spheres)}
	nearest := -1
	closest := math.Inf(1)

	for i, sphere := range rt.spheres {
		if t, ok := sphere.Intersect(ray); ok && t < closest {
			closest = t
			nearest = i
		}
	}
	if nearest < 0 {
		return core.Color{}, result
	}

	shade := rt.spheres[nearest].ShadeAmong(ray.At(closest), rt.light, rt.spheres, nearest)
	result.Hit = true
	result.Lit = shade.Lit
	result.Brightness = shade.Brightness
	return shade.Color, result
}

// shadeOverwrite shades every hit sphere in order and keeps the last one
func (rt *Raytracer) shadeOverwrite(ray core.Ray) (core.Color, PixelResult) {
	result := PixelResult{SphereTests: len(rt.spheres)}
	var color core.Color

	for i, sphere := range rt.spheres {
		point, ok := ray.IntersectionPoint(sphere)
		if !ok {
			continue
		}
		shade := sphere.ShadeAmong(point, rt.light, rt.spheres, i)
		color = shade.Color
		result.Hit = true
		result.Lit = shade.Lit
		result.Brightness = shade.Brightness
	}
	return color, result
}

// RenderBounds renders pixels within bounds into sink
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, sink PixelSink) RenderStats {
	stats := NewRenderStats()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			color, result := rt.ShadePixel(x, y)
			if result.Hit {
				sink.Set(x, y, color)
			}
			stats.AddPixel(result)
		}
	}
	return stats
}

// Render renders the whole image into sink using the worker pool
func (rt *Raytracer) Render(ctx context.Context, sink PixelSink) (RenderStats, error) {
	tiles := NewTileGrid(rt.width, rt.height, rt.config.TileSize)
	pool := NewWorkerPool(rt, rt.config.NumWorkers)

	rt.logger.Printf("Rendering %dx%d with %d spheres (%s compositing, %d tiles, %d workers)\n",
		rt.width, rt.height, len(rt.spheres), rt.config.Composite, len(tiles), pool.GetNumWorkers())

	stats, err := pool.Run(ctx, tiles, sink)
	if err != nil {
		return RenderStats{}, err
	}
	stats.Finalize()
	return stats, nil
}

// RenderImage renders into a new image pre-filled with the scene background
func (rt *Raytracer) RenderImage(ctx context.Context) (*image.RGBA, RenderStats, error) {
	sink := output.NewImageSink(rt.width, rt.height, rt.scene.GetBackground())
	stats, err := rt.Render(ctx, sink)
	if err != nil {
		return nil, RenderStats{}, err
	}
	return sink.Image(), stats, nil
}
