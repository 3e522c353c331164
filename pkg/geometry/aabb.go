package geometry

import (
	"math"

	"github.com/df07/go-shadowcaster/pkg/core"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min core.Vec3 // Minimum corner
	Max core.Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max core.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Union returns the smallest AABB containing both boxes
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: core.NewVec3(
			math.Min(aabb.Min.X, other.Min.X),
			math.Min(aabb.Min.Y, other.Min.Y),
			math.Min(aabb.Min.Z, other.Min.Z),
		),
		Max: core.NewVec3(
			math.Max(aabb.Max.X, other.Max.X),
			math.Max(aabb.Max.Y, other.Max.Y),
			math.Max(aabb.Max.Z, other.Max.Z),
		),
	}
}

// Size returns the extent along each axis
func (aabb AABB) Size() core.Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// Center returns the midpoint of the box
func (aabb AABB) Center() core.Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Bounds returns the AABB enclosing all spheres. Empty input gives a zero box.
func Bounds(spheres []Sphere) AABB {
	if len(spheres) == 0 {
		return AABB{}
	}
	box := spheres[0].BoundingBox()
	for _, s := range spheres[1:] {
		box = box.Union(s.BoundingBox())
	}
	return box
}
