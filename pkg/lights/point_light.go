package lights

import "github.com/df07/go-shadowcaster/pkg/core"

// PointLight is an infinitely small light at a fixed position
type PointLight struct {
	Origin     core.Vec3
	Brightness float64 // Carried with the light; shading does not scale by it
}

// NewPointLight creates a new point light
func NewPointLight(origin core.Vec3, brightness float64) PointLight {
	return PointLight{Origin: origin, Brightness: brightness}
}

// DirectionFrom returns the unit direction from point to the light.
// point must not coincide with the light origin.
func (pl PointLight) DirectionFrom(point core.Vec3) core.Vec3 {
	return point.DirectionTo(pl.Origin)
}
