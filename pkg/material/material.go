package material

import "github.com/df07/go-shadowcaster/pkg/core"

// Material describes how a surface reflects light.
// Only the albedo is used today; further terms can be added without
// changing how spheres consume it.
type Material struct {
	Albedo core.Color // Base color before lighting is applied
}

// NewMaterial creates a material with the given albedo
func NewMaterial(albedo core.Color) Material {
	return Material{Albedo: albedo}
}

// Equal reports whether two materials have the same albedo
func (m Material) Equal(other Material) bool {
	return m.Albedo.Equal(other.Albedo)
}

// Shade returns the albedo scaled by the given brightness
func (m Material) Shade(brightness float64) core.Color {
	return m.Albedo.Scale(brightness)
}
