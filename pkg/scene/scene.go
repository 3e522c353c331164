package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-shadowcaster/pkg/core"
	"github.com/df07/go-shadowcaster/pkg/geometry"
	"github.com/df07/go-shadowcaster/pkg/lights"
)

var (
	// ErrUnknownScene is returned when a scene name resolves to nothing
	ErrUnknownScene = errors.New("unknown scene")
	// ErrInvalidScene is returned for scenes that cannot be rendered
	ErrInvalidScene = errors.New("invalid scene")
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name       string
	Width      int // Image width in pixels
	Height     int // Image height in pixels
	Spheres    []geometry.Sphere
	Light      lights.PointLight
	Background core.Color // Color of pixels no sphere covers
}

func (s *Scene) GetSpheres() []geometry.Sphere { return s.Spheres }
func (s *Scene) GetLight() lights.PointLight   { return s.Light }
func (s *Scene) GetBackground() core.Color     { return s.Background }
func (s *Scene) GetSize() (int, int)           { return s.Width, s.Height }

// Bounds returns the box enclosing every sphere
func (s *Scene) Bounds() geometry.AABB {
	return geometry.Bounds(s.Spheres)
}

// OffCanvas returns the indices of spheres whose bounds miss the image
// rectangle in x and y. Pixel rays never reach them; they only cast shadows.
func (s *Scene) OffCanvas() []int {
	var off []int
	for i, sphere := range s.Spheres {
		box := sphere.BoundingBox()
		if box.Max.X < 0 || box.Max.Y < 0 || box.Min.X > float64(s.Width-1) || box.Min.Y > float64(s.Height-1) {
			off = append(off, i)
		}
	}
	return off
}

// Validate checks the scene can be rendered
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidScene, s.Width, s.Height)
	}
	for i, sphere := range s.Spheres {
		if sphere.Radius <= 0 {
			return fmt.Errorf("%w: sphere %d has non-positive radius %g", ErrInvalidScene, i, sphere.Radius)
		}
	}
	return nil
}
