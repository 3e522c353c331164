package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-shadowcaster/pkg/core"
	"github.com/df07/go-shadowcaster/pkg/lights"
	"github.com/df07/go-shadowcaster/pkg/material"
)

var black = material.NewMaterial(core.NewColor(0, 0, 0))

// unitSphereAhead is a unit sphere five units down the +z axis
func unitSphereAhead() Sphere {
	return NewSphere(core.NewVec3(0, 0, 5), 1.0, black)
}

func forwardRay() core.Ray {
	return core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
}

func TestSphere_Intersect_Miss(t *testing.T) {
	sphere := unitSphereAhead()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))

	if tHit, ok := sphere.Intersect(ray); ok {
		t.Errorf("Expected miss, but got hit at t=%f", tHit)
	}
}

func TestSphere_Intersect_Roots(t *testing.T) {
	tests := []struct {
		name      string
		ray       core.Ray
		expectHit bool
		expectedT float64
	}{
		{
			name:      "origin outside returns near root",
			ray:       forwardRay(),
			expectHit: true,
			expectedT: 4.0,
		},
		{
			name:      "origin inside returns far root",
			ray:       core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1)),
			expectHit: true,
			expectedT: 1.0,
		},
		{
			name:      "sphere behind origin",
			ray:       core.NewRay(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, 1)),
			expectHit: false,
		},
		{
			name:      "origin on surface leaving sphere",
			ray:       core.NewRay(core.NewVec3(0, 0, 4), core.NewVec3(0, 0, -1)),
			expectHit: false,
		},
		{
			name:      "origin on surface entering sphere",
			ray:       core.NewRay(core.NewVec3(0, 0, 4), core.NewVec3(0, 0, 1)),
			expectHit: true,
			expectedT: 2.0,
		},
		{
			name:      "non unit direction",
			ray:       core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 2)),
			expectHit: true,
			expectedT: 2.0,
		},
		{
			name:      "tangent ray",
			ray:       core.NewRay(core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1)),
			expectHit: true,
			expectedT: 5.0,
		},
	}

	sphere := unitSphereAhead()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tHit, ok := sphere.Intersect(tt.ray)
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%t, got hit=%t (t=%f)", tt.expectHit, ok, tHit)
			}
			if ok && math.Abs(tHit-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, tHit)
			}
		})
	}
}

func TestSphere_IntersectionPointAndNormal(t *testing.T) {
	sphere := unitSphereAhead()

	point, ok := forwardRay().IntersectionPoint(sphere)
	if !ok {
		t.Fatal("Expected intersection point")
	}
	if !point.ApproxEqual(core.NewVec3(0, 0, 4)) {
		t.Errorf("Expected point (0,0,4), got %v", point)
	}

	normal := sphere.NormalAt(point)
	if !normal.ApproxEqual(core.NewVec3(0, 0, -1)) {
		t.Errorf("Expected normal (0,0,-1), got %v", normal)
	}

	if _, ok := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)).IntersectionPoint(sphere); ok {
		t.Error("Expected no intersection point for missing ray")
	}
}

func TestSphere_NormalAt_OffSurface(t *testing.T) {
	sphere := unitSphereAhead()
	// Interior point still yields a unit direction from the center
	normal := sphere.NormalAt(core.NewVec3(0, 0.5, 5))
	if !normal.ApproxEqual(core.NewVec3(0, 1, 0)) {
		t.Errorf("Expected (0,1,0), got %v", normal)
	}
}

func TestSphere_BrightnessAt(t *testing.T) {
	tests := []struct {
		name   string
		sphere Sphere
		light  lights.PointLight
		check  func(t *testing.T, brightness float64)
	}{
		{
			name:   "light in front of surface",
			sphere: NewSphere(core.NewVec3(-0.7, 0, 5), 1.0, black),
			light:  lights.NewPointLight(core.NewVec3(5, 0, 5), 1.0),
			check: func(t *testing.T, b float64) {
				if b <= 0 {
					t.Errorf("Expected positive brightness, got %f", b)
				}
			},
		},
		{
			name:   "light directly behind surface",
			sphere: unitSphereAhead(),
			light:  lights.NewPointLight(core.NewVec3(0, 0, 10), 1.0),
			check: func(t *testing.T, b float64) {
				if b != 0 {
					t.Errorf("Expected zero brightness, got %f", b)
				}
			},
		},
		{
			name:   "light off to the side",
			sphere: unitSphereAhead(),
			light:  lights.NewPointLight(core.NewVec3(5, 0, 3), 1.0),
			check: func(t *testing.T, b float64) {
				expected := 1 / math.Sqrt(26)
				if math.Abs(b-expected) > 1e-12 {
					t.Errorf("Expected brightness %f, got %f", expected, b)
				}
			},
		},
		{
			name:   "light head on",
			sphere: unitSphereAhead(),
			light:  lights.NewPointLight(core.NewVec3(0, 0, -3), 1.0),
			check: func(t *testing.T, b float64) {
				if math.Abs(b-1) > 1e-12 {
					t.Errorf("Expected brightness 1, got %f", b)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, ok := forwardRay().IntersectionPoint(tt.sphere)
			if !ok {
				t.Fatal("Expected ray to hit sphere")
			}
			b, lit := tt.sphere.BrightnessAt(point, tt.light, nil)
			if !lit {
				t.Fatal("Expected point to be lit with no occluders")
			}
			tt.check(t, b)
		})
	}
}

func TestSphere_Shadow(t *testing.T) {
	light := lights.NewPointLight(core.NewVec3(5, 0, 3), 1.0)
	sphere := unitSphereAhead()
	blocker := NewSphere(core.NewVec3(4, 0, 3.5), 1.0, black)

	point, ok := forwardRay().IntersectionPoint(sphere)
	if !ok {
		t.Fatal("Expected ray to hit sphere")
	}

	if _, lit := sphere.BrightnessAt(point, light, []Sphere{blocker}); lit {
		t.Error("Expected point to be in shadow")
	}

	color := sphere.ColorAt(point, light, []Sphere{blocker})
	expected := core.Color{R: 0, G: 0, B: 0, A: 255}
	if color != expected {
		t.Errorf("Expected %v, got %v", expected, color)
	}
}

func TestSphere_ShadowIgnoresDistance(t *testing.T) {
	// The blocker sits beyond the light but still on the shadow ray
	light := lights.NewPointLight(core.NewVec3(0, 0, -3), 1.0)
	sphere := unitSphereAhead()
	beyond := NewSphere(core.NewVec3(0, 0, -20), 1.0, black)

	point, _ := forwardRay().IntersectionPoint(sphere)
	if _, lit := sphere.BrightnessAt(point, light, []Sphere{beyond}); lit {
		t.Error("Expected any occluder on the ray to cast shadow")
	}
}

func TestSphere_ColorAt(t *testing.T) {
	albedo := core.NewColor(200, 100, 50)
	sphere := NewSphere(core.NewVec3(0, 0, 5), 1.0, material.NewMaterial(albedo))
	point, _ := forwardRay().IntersectionPoint(sphere)

	tests := []struct {
		name     string
		light    lights.PointLight
		expected core.Color
	}{
		{"head on", lights.NewPointLight(core.NewVec3(0, 0, -3), 1.0), albedo},
		{"behind", lights.NewPointLight(core.NewVec3(0, 0, 10), 1.0), core.NewColor(0, 0, 0)},
		{"sixty degrees", lights.NewPointLight(core.NewVec3(math.Sqrt(3), 0, 3), 1.0), core.NewColor(100, 50, 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sphere.ColorAt(point, tt.light, nil); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSphere_Idempotent(t *testing.T) {
	light := lights.NewPointLight(core.NewVec3(5, 0, 3), 1.0)
	sphere := unitSphereAhead()
	others := []Sphere{NewSphere(core.NewVec3(10, 10, 10), 1, black)}

	t1, _ := sphere.Intersect(forwardRay())
	b1, lit1 := sphere.BrightnessAt(core.NewVec3(0, 0, 4), light, others)
	n1 := sphere.NormalAt(core.NewVec3(0, 0, 4))
	for i := 0; i < 10; i++ {
		t2, _ := sphere.Intersect(forwardRay())
		b2, lit2 := sphere.BrightnessAt(core.NewVec3(0, 0, 4), light, others)
		n2 := sphere.NormalAt(core.NewVec3(0, 0, 4))
		if t1 != t2 || b1 != b2 || lit1 != lit2 || n1 != n2 {
			t.Fatalf("Expected identical results on repeated evaluation")
		}
	}
}

func TestSphere_Equal(t *testing.T) {
	a := unitSphereAhead()
	if !a.Equal(unitSphereAhead()) {
		t.Error("Expected identical spheres to be equal")
	}
	if a.Equal(NewSphere(core.NewVec3(0, 0, 5), 2.0, black)) {
		t.Error("Expected radius difference to make spheres unequal")
	}
	if a.Equal(NewSphere(core.NewVec3(0, 0, 5), 1.0, material.NewMaterial(core.NewColor(1, 0, 0)))) {
		t.Error("Expected material difference to make spheres unequal")
	}
}

func TestSphere_ShadeAmong(t *testing.T) {
	light := lights.NewPointLight(core.NewVec3(5, 0, 3), 1.0)
	sphere := unitSphereAhead()
	blocker := NewSphere(core.NewVec3(4, 0, 3.5), 1.0, black)
	spheres := []Sphere{sphere, blocker}

	point, ok := forwardRay().IntersectionPoint(sphere)
	if !ok {
		t.Fatal("Expected ray to hit sphere")
	}

	tests := []struct {
		name        string
		skip        int
		expectedLit bool
	}{
		{"skip self", 0, false},
		{"skip blocker", 1, true},
		{"skip nothing", -1, false},
		{"skip out of range", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shade := sphere.ShadeAmong(point, light, spheres, tt.skip)
			if shade.Lit != tt.expectedLit {
				t.Errorf("Expected lit=%t, got %t", tt.expectedLit, shade.Lit)
			}
			if !shade.Lit && shade.Brightness != 0 {
				t.Errorf("Expected zero brightness in shadow, got %f", shade.Brightness)
			}
		})
	}

	// Shading against the full slice leaves it untouched
	if !spheres[0].Equal(sphere) || !spheres[1].Equal(blocker) {
		t.Error("Expected input slice to be left untouched")
	}
}

func TestBounds(t *testing.T) {
	spheres := []Sphere{
		NewSphere(core.NewVec3(0, 0, 0), 1, black),
		NewSphere(core.NewVec3(10, 5, -2), 2, black),
	}
	box := Bounds(spheres)
	if box.Min != core.NewVec3(-1, -1, -4) || box.Max != core.NewVec3(12, 7, 1) {
		t.Errorf("Unexpected bounds %v", box)
	}
	if box.Size() != core.NewVec3(13, 8, 5) {
		t.Errorf("Unexpected size %v", box.Size())
	}
	if (Bounds(nil) != AABB{}) {
		t.Error("Expected zero box for empty input")
	}
}
