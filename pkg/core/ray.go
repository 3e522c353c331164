package core

// Ray represents a ray with an origin and direction.
// Direction does not need to be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// IntersectionPoint returns the point where the ray meets the shape, if any
func (r Ray) IntersectionPoint(shape Intersector) (Vec3, bool) {
	t, ok := shape.Intersect(r)
	if !ok {
		return Vec3{}, false
	}
	return r.At(t), true
}
