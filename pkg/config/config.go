package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/df07/go-shadowcaster/pkg/core"
	"github.com/df07/go-shadowcaster/pkg/logging"
	"github.com/df07/go-shadowcaster/pkg/output"
	"github.com/df07/go-shadowcaster/pkg/renderer"
	"github.com/df07/go-shadowcaster/pkg/scene"
)

// EnvPrefix prefixes every environment override, e.g. SHADOWCASTER_WIDTH
const EnvPrefix = "SHADOWCASTER"

// ErrInvalidConfig is returned when a loaded configuration cannot be used
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the renderer configuration
type Config struct {
	Scene           string          `yaml:"scene" mapstructure:"scene"`
	Seed            int64           `yaml:"seed" mapstructure:"seed"`
	Width           int             `yaml:"width" mapstructure:"width"`
	Height          int             `yaml:"height" mapstructure:"height"`
	Spheres         int             `yaml:"spheres" mapstructure:"spheres"`
	MaxRadius       float64         `yaml:"max_radius" mapstructure:"max_radius"`
	MaxDepth        float64         `yaml:"max_depth" mapstructure:"max_depth"`
	Background      string          `yaml:"background" mapstructure:"background"`
	LightBrightness float64         `yaml:"light_brightness" mapstructure:"light_brightness"`
	Composite       string          `yaml:"composite" mapstructure:"composite"`
	Workers         int             `yaml:"workers" mapstructure:"workers"`
	TileSize        int             `yaml:"tile_size" mapstructure:"tile_size"`
	OutputDir       string          `yaml:"output_dir" mapstructure:"output_dir"`
	OutputFile      string          `yaml:"output_file" mapstructure:"output_file"`
	ThumbnailWidth  int             `yaml:"thumbnail_width" mapstructure:"thumbnail_width"`
	ScenesDir       string          `yaml:"scenes_dir" mapstructure:"scenes_dir"`
	LogLevel        string          `yaml:"log_level" mapstructure:"log_level"`
	Upload          bool            `yaml:"upload" mapstructure:"upload"`
	S3              output.S3Config `yaml:"s3" mapstructure:"s3"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	params := scene.DefaultRandomParams()
	render := renderer.DefaultRenderConfig()
	return &Config{
		Scene:           "random",
		Seed:            1,
		Width:           params.Width,
		Height:          params.Height,
		Spheres:         params.NumSpheres,
		MaxRadius:       params.MaxRadius,
		MaxDepth:        params.MaxDepth,
		Background:      params.Background.Hex(),
		LightBrightness: params.LightBrightness,
		Composite:       string(render.Composite),
		Workers:         render.NumWorkers,
		TileSize:        render.TileSize,
		OutputDir:       "output",
		ScenesDir:       "scenes",
		LogLevel:        "info",
	}
}

// New returns a viper instance with defaults and environment overrides
// registered. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("scene", d.Scene)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("width", d.Width)
	v.SetDefault("height", d.Height)
	v.SetDefault("spheres", d.Spheres)
	v.SetDefault("max_radius", d.MaxRadius)
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("background", d.Background)
	v.SetDefault("light_brightness", d.LightBrightness)
	v.SetDefault("composite", d.Composite)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("tile_size", d.TileSize)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("output_file", d.OutputFile)
	v.SetDefault("thumbnail_width", d.ThumbnailWidth)
	v.SetDefault("scenes_dir", d.ScenesDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("upload", d.Upload)
	for _, key := range []string{"access_key", "secret_key", "endpoint", "region", "bucket", "prefix", "public_url"} {
		v.SetDefault("s3."+key, "")
	}
	return v
}

// LoadDotEnv loads environment variables from path if it exists
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads configFile (optional) into v and returns the validated config.
// Precedence is flags, then environment, then file, then defaults.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every field that can be checked without touching disk
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Spheres < 0 {
		return fmt.Errorf("%w: sphere count %d cannot be negative", ErrInvalidConfig, c.Spheres)
	}
	if c.MaxRadius <= 0 {
		return fmt.Errorf("%w: max_radius must be positive", ErrInvalidConfig)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth cannot be negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", ErrInvalidConfig)
	}
	if c.ThumbnailWidth < 0 {
		return fmt.Errorf("%w: thumbnail_width cannot be negative", ErrInvalidConfig)
	}
	if _, err := core.ParseHexColor(c.Background); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalidConfig, err)
	}
	if _, err := renderer.ParseCompositeMode(c.Composite); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Upload && !c.S3.Enabled() {
		return fmt.Errorf("%w: upload requires s3.bucket and s3.region", ErrInvalidConfig)
	}
	return nil
}

// RandomParams returns the random scene parameters described by c
func (c *Config) RandomParams() scene.RandomParams {
	background, err := core.ParseHexColor(c.Background)
	if err != nil {
		background = scene.DefaultRandomParams().Background
	}
	return scene.RandomParams{
		Width:           c.Width,
		Height:          c.Height,
		NumSpheres:      c.Spheres,
		MaxRadius:       c.MaxRadius,
		MaxDepth:        c.MaxDepth,
		LightBrightness: c.LightBrightness,
		Background:      background,
	}
}

// ResolveOptions returns the options used to resolve c.Scene. Scene file
// paths are allowed since the config comes from the operator.
func (c *Config) ResolveOptions() scene.ResolveOptions {
	return scene.ResolveOptions{
		Random:     c.RandomParams(),
		Seed:       c.Seed,
		ScenesDir:  c.ScenesDir,
		AllowPaths: true,
	}
}

// RenderConfig returns the renderer settings described by c
func (c *Config) RenderConfig() renderer.RenderConfig {
	mode, err := renderer.ParseCompositeMode(c.Composite)
	if err != nil {
		mode = renderer.CompositeNearest
	}
	return renderer.RenderConfig{
		Composite:  mode,
		TileSize:   c.TileSize,
		NumWorkers: c.Workers,
	}
}
