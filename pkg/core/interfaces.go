package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Intersector is anything a ray can be tested against.
// Intersect returns the ray parameter of the hit and whether there was one.
type Intersector interface {
	Intersect(ray Ray) (float64, bool)
}

// NopLogger discards everything
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(string, ...interface{}) {}
