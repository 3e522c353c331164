package core

import "math"

// Epsilon is the tolerance used by ApproxEqual (float64 machine epsilon)
const Epsilon = 2.220446049250313e-16

// Vec3 represents a 3D point or direction
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Divide returns the vector with every component divided by a scalar
func (v Vec3) Divide(scalar float64) Vec3 {
	return Vec3{v.X / scalar, v.Y / scalar, v.Z / scalar}
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns a unit vector in the same direction.
// v must not be the zero vector; the result is NaN in that case.
func (v Vec3) Normalize() Vec3 {
	return v.Divide(v.Length())
}

// DistanceTo returns the euclidean distance between two points
func (v Vec3) DistanceTo(dest Vec3) float64 {
	return v.Subtract(dest).Length()
}

// DirectionTo returns the unit vector pointing from v towards dest
func (v Vec3) DirectionTo(dest Vec3) Vec3 {
	return dest.Subtract(v).Normalize()
}

// Negate returns the negative of the vector
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// ApproxEqual reports whether every component differs by less than Epsilon.
// Rounding from sqrt and division makes exact comparison useless here.
func (v Vec3) ApproxEqual(other Vec3) bool {
	return math.Abs(v.X-other.X) < Epsilon &&
		math.Abs(v.Y-other.Y) < Epsilon &&
		math.Abs(v.Z-other.Z) < Epsilon
}
