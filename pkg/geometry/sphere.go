package geometry

import (
	"math"

	"github.com/df07/go-shadowcaster/pkg/core"
	"github.com/df07/go-shadowcaster/pkg/lights"
	"github.com/df07/go-shadowcaster/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64 // Expected > 0, not enforced
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) Sphere {
	return Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Equal reports structural equality: approximately equal center, identical
// radius and material
func (s Sphere) Equal(other Sphere) bool {
	return s.Center.ApproxEqual(other.Center) &&
		s.Radius == other.Radius &&
		s.Material.Equal(other.Material)
}

// Intersect returns the ray parameter of the nearest intersection in front of
// the ray origin. A root of exactly zero counts as a miss, so a ray starting on
// the surface and leaving the sphere does not hit it.
func (s Sphere) Intersect(ray core.Ray) (float64, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}

	// Direct form of the quadratic formula; loses precision when b² >> 4ac
	sqrtD := math.Sqrt(discriminant)
	t1 := (-b + sqrtD) / (2 * a)
	t2 := (-b - sqrtD) / (2 * a)

	switch {
	case t1 > 0 && t2 > 0:
		return math.Min(t1, t2), true
	case t1 > 0:
		// Ray origin is inside the sphere
		return t1, true
	case t2 > 0:
		return t2, true
	default:
		return 0, false
	}
}

// NormalAt returns the direction from the center through point. It is the
// unit surface normal when point lies on the sphere.
func (s Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Divide(s.Center.DistanceTo(point))
}

// BrightnessAt returns the cosine term between the surface normal and the
// direction to the light, clamped at zero. The second result is false when any
// occluder intersects the ray from point towards the light; occluders are
// tested at any distance along that ray.
func (s Sphere) BrightnessAt(point core.Vec3, light lights.PointLight, occluders []Sphere) (float64, bool) {
	return s.BrightnessAmong(point, light, occluders, -1)
}

// BrightnessAmong is BrightnessAt with spheres[skip] left out of the shadow
// test. skip is normally the index of s within spheres; out of range values
// test every sphere. Exclusion is by position so duplicate spheres still
// shadow each other.
func (s Sphere) BrightnessAmong(point core.Vec3, light lights.PointLight, spheres []Sphere, skip int) (float64, bool) {
	toLight := light.DirectionFrom(point)
	shadowRay := core.NewRay(point, toLight)

	for i, occluder := range spheres {
		if i == skip {
			continue
		}
		if _, hit := occluder.Intersect(shadowRay); hit {
			return 0, false
		}
	}

	return math.Max(0, toLight.Dot(s.NormalAt(point))), true
}

// ShadeResult is the outcome of lighting a single surface point
type ShadeResult struct {
	Color      core.Color
	Brightness float64 // Zero when shadowed
	Lit        bool    // False when an occluder blocks the light
}

// Shade lights point and returns the color together with the terms that
// produced it
func (s Sphere) Shade(point core.Vec3, light lights.PointLight, occluders []Sphere) ShadeResult {
	return s.ShadeAmong(point, light, occluders, -1)
}

// ShadeAmong is Shade with spheres[skip] left out of the shadow test
func (s Sphere) ShadeAmong(point core.Vec3, light lights.PointLight, spheres []Sphere, skip int) ShadeResult {
	brightness, lit := s.BrightnessAmong(point, light, spheres, skip)
	if !lit {
		brightness = 0
	}
	return ShadeResult{
		Color:      s.Material.Shade(brightness),
		Brightness: brightness,
		Lit:        lit,
	}
}

// ColorAt returns the shaded color at point. Shadowed points render as the
// albedo scaled to zero; there is no ambient term.
func (s Sphere) ColorAt(point core.Vec3, light lights.PointLight, occluders []Sphere) core.Color {
	return s.Shade(point, light, occluders).Color
}

// BoundingBox returns the axis-aligned bounds of the sphere
func (s Sphere) BoundingBox() AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}
