package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-shadowcaster/pkg/core"
	"github.com/df07/go-shadowcaster/pkg/geometry"
	"github.com/df07/go-shadowcaster/pkg/lights"
	"github.com/df07/go-shadowcaster/pkg/material"
)

// sceneFile is the YAML layout of a scene description
type sceneFile struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Width       int          `yaml:"width"`
	Height      int          `yaml:"height"`
	Background  string       `yaml:"background"`
	Light       lightFile    `yaml:"light"`
	Spheres     []sphereFile `yaml:"spheres"`
}

type lightFile struct {
	Origin     []float64 `yaml:"origin"`
	Brightness *float64  `yaml:"brightness"`
}

type sphereFile struct {
	Center []float64 `yaml:"center"`
	Radius float64   `yaml:"radius"`
	Albedo string    `yaml:"albedo"`
}

// LoadSceneFile reads a YAML scene description from disk
func LoadSceneFile(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ParseScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ParseScene decodes a YAML scene description. Missing width, height or
// background fall back to the random scene defaults; the light defaults to
// the image center.
func ParseScene(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}

	var sf sceneFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	defaults := DefaultRandomParams()
	s := &Scene{
		Name:       sf.Name,
		Width:      sf.Width,
		Height:     sf.Height,
		Background: defaults.Background,
	}
	if s.Width == 0 {
		s.Width = defaults.Width
	}
	if s.Height == 0 {
		s.Height = defaults.Height
	}

	if sf.Background != "" {
		background, err := core.ParseHexColor(sf.Background)
		if err != nil {
			return nil, fmt.Errorf("%w: background: %v", ErrInvalidScene, err)
		}
		s.Background = background
	}

	s.Light, err = sf.Light.toLight(s.Width, s.Height, defaults.LightBrightness)
	if err != nil {
		return nil, err
	}

	for i, spf := range sf.Spheres {
		sphere, err := spf.toSphere()
		if err != nil {
			return nil, fmt.Errorf("%w: sphere %d: %v", ErrInvalidScene, i, err)
		}
		s.Spheres = append(s.Spheres, sphere)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (lf lightFile) toLight(width, height int, defaultBrightness float64) (lights.PointLight, error) {
	origin := core.NewVec3(float64(width/2), float64(height/2), 0)
	if lf.Origin != nil {
		v, err := toVec3(lf.Origin)
		if err != nil {
			return lights.PointLight{}, fmt.Errorf("%w: light origin: %v", ErrInvalidScene, err)
		}
		origin = v
	}

	brightness := defaultBrightness
	if lf.Brightness != nil {
		brightness = *lf.Brightness
	}
	return lights.NewPointLight(origin, brightness), nil
}

func (spf sphereFile) toSphere() (geometry.Sphere, error) {
	center, err := toVec3(spf.Center)
	if err != nil {
		return geometry.Sphere{}, fmt.Errorf("center: %v", err)
	}
	albedo := core.NewColor(255, 255, 255)
	if spf.Albedo != "" {
		if albedo, err = core.ParseHexColor(spf.Albedo); err != nil {
			return geometry.Sphere{}, fmt.Errorf("albedo: %v", err)
		}
	}
	return geometry.NewSphere(center, spf.Radius, material.NewMaterial(albedo)), nil
}

func toVec3(values []float64) (core.Vec3, error) {
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("want 3 components, got %d", len(values))
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

// WriteScene encodes s as YAML
func WriteScene(w io.Writer, s *Scene, description string) error {
	sf := sceneFile{
		Name:        s.Name,
		Description: description,
		Width:       s.Width,
		Height:      s.Height,
		Background:  s.Background.Hex(),
		Light: lightFile{
			Origin:     []float64{s.Light.Origin.X, s.Light.Origin.Y, s.Light.Origin.Z},
			Brightness: &s.Light.Brightness,
		},
	}
	for _, sphere := range s.Spheres {
		sf.Spheres = append(sf.Spheres, sphereFile{
			Center: []float64{sphere.Center.X, sphere.Center.Y, sphere.Center.Z},
			Radius: sphere.Radius,
			Albedo: sphere.Material.Albedo.Hex(),
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&sf); err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	return encoder.Close()
}
