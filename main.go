package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/df07/go-shadowcaster/pkg/config"
	"github.com/df07/go-shadowcaster/pkg/logging"
	"github.com/df07/go-shadowcaster/pkg/output"
	"github.com/df07/go-shadowcaster/pkg/renderer"
	"github.com/df07/go-shadowcaster/pkg/scene"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree around a fresh viper instance
func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile, envFile string

	rootCmd := &cobra.Command{
		Use:           "shadowcaster",
		Short:         "Orthographic sphere ray caster with hard shadows",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the config")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("scenes-dir", "scenes", "Directory of YAML scene files")
	mustBindFlag(v, "log_level", rootCmd.PersistentFlags(), "log-level")
	mustBindFlag(v, "scenes_dir", rootCmd.PersistentFlags(), "scenes-dir")

	rootCmd.AddCommand(newRenderCmd(v, &cfgFile))
	rootCmd.AddCommand(newScenesCmd(v, &cfgFile))
	return rootCmd
}

func newRenderCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to PNG",
		Long: `Render a scene to PNG.

Scenes are builtin names (random, eclipse), names of YAML files in the
scenes directory, or paths to YAML files. Output is saved to
<output-dir>/<scene>/render_<timestamp>.png unless --output is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			result, err := runRender(ctx, cfg, log)
			if err != nil {
				log.Error().Err(err).Msg("Render failed")
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("scene", "random", "Scene name or YAML file")
	flags.Int64("seed", 1, "Random scene seed")
	flags.Int("width", 2048, "Image width for generated scenes")
	flags.Int("height", 1080, "Image height for generated scenes")
	flags.Int("spheres", 200, "Number of spheres in the random scene")
	flags.String("composite", "nearest", "Compositing of overlapping spheres: nearest or overwrite")
	flags.Int("workers", 0, "Number of parallel workers (0 = use CPU count)")
	flags.Int("tile-size", 64, "Tile size in pixels")
	flags.String("output-dir", "output", "Directory for timestamped renders")
	flags.StringP("output", "o", "", "Explicit output file path")
	flags.Int("thumbnail", 0, "Also write a thumbnail this many pixels wide (0 = none)")
	flags.Bool("upload", false, "Upload the render to the configured S3 bucket")

	for key, flag := range map[string]string{
		"scene":           "scene",
		"seed":            "seed",
		"width":           "width",
		"height":          "height",
		"spheres":         "spheres",
		"composite":       "composite",
		"workers":         "workers",
		"tile_size":       "tile-size",
		"output_dir":      "output-dir",
		"output_file":     "output",
		"thumbnail_width": "thumbnail",
		"upload":          "upload",
	} {
		mustBindFlag(v, key, flags, flag)
	}
	return cmd
}

// mustBindFlag binds a config key to a declared flag. A missing flag is a
// programming error, so it panics rather than leaving the key unbound.
func mustBindFlag(v *viper.Viper, key string, flags *pflag.FlagSet, name string) {
	if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("binding %q to --%s: %v", key, name, err))
	}
}

func newScenesCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List builtin scenes and YAML scene files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, true)
			if err != nil {
				return err
			}
			scenes, err := scene.ListAll(cfg.ScenesDir, logging.NewZerologLogger(log))
			if err != nil {
				return err
			}
			printScenes(cmd.OutOrStdout(), scenes)
			return nil
		},
	}
}

func printScenes(w io.Writer, scenes []scene.SceneInfo) {
	for _, info := range scenes {
		line := fmt.Sprintf("%-16s %-8s", info.ID, info.Type)
		if info.Type == "file" {
			line += fmt.Sprintf(" %3d spheres", info.Spheres)
		}
		if info.Description != "" {
			line += "  " + info.Description
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// renderResult summarizes a finished render
type renderResult struct {
	Path          string
	ThumbnailPath string
	URL           string
	Stats         renderer.RenderStats
}

// runRender resolves, renders and saves the configured scene
func runRender(ctx context.Context, cfg *config.Config, log zerolog.Logger) (renderResult, error) {
	selectedScene, err := scene.Resolve(cfg.Scene, cfg.ResolveOptions())
	if err != nil {
		return renderResult{}, err
	}
	log.Info().Str("scene", selectedScene.Name).Int("spheres", len(selectedScene.Spheres)).Msg("Scene loaded")
	bounds := selectedScene.Bounds()
	log.Debug().
		Str("center", fmt.Sprintf("%.1f", bounds.Center())).
		Str("size", fmt.Sprintf("%.1f", bounds.Size())).
		Msg("Scene bounds")
	if off := selectedScene.OffCanvas(); len(off) > 0 {
		log.Warn().Ints("spheres", off).Msg("Spheres outside the image only cast shadows")
	}

	raytracer := renderer.NewRaytracer(selectedScene, cfg.RenderConfig(), logging.NewZerologLogger(log))

	startTime := time.Now()
	img, stats, err := raytracer.RenderImage(ctx)
	if err != nil {
		return renderResult{}, fmt.Errorf("render failed: %w", err)
	}
	log.Info().
		Dur("elapsed", time.Since(startTime)).
		Float64("hitRatio", stats.HitRatio()).
		Int("shadowed", stats.ShadowedPixels).
		Float64("meanBrightness", stats.MeanBrightness).
		Float64("luminance", renderer.CalculateAverageLuminance(img)).
		Msg("Render completed")

	result := renderResult{Stats: stats, Path: cfg.OutputFile}
	if result.Path == "" {
		result.Path = output.RenderPath(cfg.OutputDir, selectedScene.Name, time.Now())
	}
	if err := output.SavePNG(result.Path, img); err != nil {
		return renderResult{}, err
	}
	log.Info().Str("path", result.Path).Msg("Render saved")

	if cfg.ThumbnailWidth > 0 {
		result.ThumbnailPath = thumbnailPath(result.Path)
		if err := output.SavePNG(result.ThumbnailPath, output.Thumbnail(img, cfg.ThumbnailWidth)); err != nil {
			return renderResult{}, err
		}
		log.Debug().Str("path", result.ThumbnailPath).Msg("Thumbnail saved")
	}

	if cfg.Upload {
		publisher, err := output.NewS3Publisher(cfg.S3)
		if err != nil {
			return renderResult{}, err
		}
		data, err := output.PNGBytes(img)
		if err != nil {
			return renderResult{}, err
		}
		name := filepath.ToSlash(filepath.Join(selectedScene.Name, filepath.Base(result.Path)))
		result.URL, err = publisher.PublishPNG(ctx, name, data)
		if err != nil {
			return renderResult{}, err
		}
		log.Info().Str("url", result.URL).Msg("Render uploaded")
	}

	return result, nil
}

// thumbnailPath returns path with a _thumb suffix before the extension
func thumbnailPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb" + ext
}
