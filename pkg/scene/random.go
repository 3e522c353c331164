package scene

import (
	"math/rand"

	"github.com/df07/go-shadowcaster/pkg/core"
	"github.com/df07/go-shadowcaster/pkg/geometry"
	"github.com/df07/go-shadowcaster/pkg/lights"
	"github.com/df07/go-shadowcaster/pkg/material"
)

// RandomParams controls the random sphere field
type RandomParams struct {
	Width           int
	Height          int
	NumSpheres      int
	MaxRadius       float64    // Radii are drawn from (0, MaxRadius)
	MaxDepth        float64    // Sphere centers have z in [0, MaxDepth)
	LightBrightness float64
	Background      core.Color
}

// DefaultRandomParams returns the classic 2048x1080 field of 200 spheres
func DefaultRandomParams() RandomParams {
	return RandomParams{
		Width:           2048,
		Height:          1080,
		NumSpheres:      200,
		MaxRadius:       50,
		MaxDepth:        1000,
		LightBrightness: 1.0,
		Background:      core.NewColor(0xe6, 0xaf, 0x2e),
	}
}

// NewRandomScene scatters spheres over the image plane. Centers span the
// image in x and y, the light sits at the image center on the z=0 plane.
// The same rng seed always produces the same scene.
func NewRandomScene(params RandomParams, random *rand.Rand) *Scene {
	spheres := make([]geometry.Sphere, 0, params.NumSpheres)
	for i := 0; i < params.NumSpheres; i++ {
		center := core.NewVec3(
			random.Float64()*float64(params.Width),
			random.Float64()*float64(params.Height),
			random.Float64()*params.MaxDepth,
		)

		radius := random.Float64() * params.MaxRadius
		for radius == 0 && params.MaxRadius > 0 {
			radius = random.Float64() * params.MaxRadius
		}

		albedo := core.NewColor(
			uint8(random.Intn(255)),
			uint8(random.Intn(255)),
			uint8(random.Intn(255)),
		)
		spheres = append(spheres, geometry.NewSphere(center, radius, material.NewMaterial(albedo)))
	}

	light := lights.NewPointLight(
		core.NewVec3(float64(params.Width/2), float64(params.Height/2), 0),
		params.LightBrightness,
	)

	return &Scene{
		Name:       "random",
		Width:      params.Width,
		Height:     params.Height,
		Spheres:    spheres,
		Light:      light,
		Background: params.Background,
	}
}
