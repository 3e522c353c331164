package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-shadowcaster/pkg/core"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, usable with Resolve
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to YAML file (file type only)
	Spheres     int    `json:"spheres"`     // Number of spheres (file type only)
}

// sceneHeader is the subset of a scene file read during discovery
type sceneHeader struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Spheres     []yaml.Node `yaml:"spheres"`
}

// ListSceneFiles scans dir for YAML scene files. A missing directory yields
// an empty list. Files that fail to parse are reported to logger and skipped.
func ListSceneFiles(dir string, logger core.Logger) ([]SceneInfo, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			logger.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata reads name, description and sphere count from a scene file
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return SceneInfo{}, fmt.Errorf("failed to read scene file: %w", err)
	}

	var header sceneHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return SceneInfo{}, fmt.Errorf("failed to parse scene file: %w", err)
	}

	id := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	name := header.Name
	if name == "" {
		name = id
	}

	return SceneInfo{
		ID:          id,
		Name:        name,
		Description: header.Description,
		Type:        "file",
		FilePath:    filePath,
		Spheres:     len(header.Spheres),
	}, nil
}

// ListAll returns the builtin scenes followed by the files in dir
func ListAll(dir string, logger core.Logger) ([]SceneInfo, error) {
	files, err := ListSceneFiles(dir, logger)
	if err != nil {
		return nil, err
	}
	all := append([]SceneInfo{}, BuiltinScenes...)
	return append(all, files...), nil
}
