package scene

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-shadowcaster/pkg/core"
	"github.com/df07/go-shadowcaster/pkg/geometry"
	"github.com/df07/go-shadowcaster/pkg/lights"
	"github.com/df07/go-shadowcaster/pkg/material"
)

// BuiltinScenes lists the scene names Resolve understands without a file
var BuiltinScenes = []SceneInfo{
	{ID: "random", Name: "random", Description: "Random field of spheres lit from the image center", Type: "builtin"},
	{ID: "eclipse", Name: "eclipse", Description: "Small sphere casting a shadow on a large one", Type: "builtin"},
}

// NewEclipseScene creates a 400x300 scene where a small sphere between the
// light and a large sphere shadows part of it
func NewEclipseScene() *Scene {
	large := geometry.NewSphere(core.NewVec3(220, 150, 200), 110,
		material.NewMaterial(core.NewColor(70, 130, 220)))
	small := geometry.NewSphere(core.NewVec3(120, 110, 60), 30,
		material.NewMaterial(core.NewColor(220, 90, 60)))
	backdrop := geometry.NewSphere(core.NewVec3(40, 260, 120), 45,
		material.NewMaterial(core.NewColor(90, 200, 110)))

	return &Scene{
		Name:       "eclipse",
		Width:      400,
		Height:     300,
		Spheres:    []geometry.Sphere{large, small, backdrop},
		Light:      lights.NewPointLight(core.NewVec3(40, 60, -40), 1.0),
		Background: core.NewColor(0xe6, 0xaf, 0x2e),
	}
}

// ResolveOptions carries what Resolve needs to build generated scenes
type ResolveOptions struct {
	Random    RandomParams
	Seed      int64
	ScenesDir string // Directory searched for <name>.yaml
	// AllowPaths lets names ending in .yaml or .yml be opened as file paths.
	// Without it only builtins and files directly inside ScenesDir resolve.
	AllowPaths bool
}

// Resolve returns the scene for name: a builtin, a path to a YAML file when
// opts.AllowPaths is set, or the name of a YAML file in opts.ScenesDir
func Resolve(name string, opts ResolveOptions) (*Scene, error) {
	switch name {
	case "":
		return nil, fmt.Errorf("%w: empty scene name", ErrUnknownScene)
	case "random":
		return NewRandomScene(opts.Random, rand.New(rand.NewSource(opts.Seed))), nil
	case "eclipse":
		return NewEclipseScene(), nil
	}

	if opts.AllowPaths && isSceneFile(name) {
		if _, err := os.Stat(name); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScene, name)
		}
		return LoadSceneFile(name)
	}

	if opts.ScenesDir != "" && isPlainName(name) {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(opts.ScenesDir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadSceneFile(path)
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownScene, name)
}

// isPlainName reports whether name can only refer to a file directly inside
// a directory
func isPlainName(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func isSceneFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
