package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/df07/go-shadowcaster/pkg/config"
	"github.com/df07/go-shadowcaster/pkg/scene"
)

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Width = 64
	cfg.Height = 48
	cfg.Spheres = 10
	cfg.MaxRadius = 10
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestRunRender(t *testing.T) {
	tests := []struct {
		name      string
		sceneName string
		thumbnail int
	}{
		{"random scene", "random", 0},
		{"eclipse scene", "eclipse", 0},
		{"random scene with thumbnail", "random", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig(t)
			cfg.Scene = tt.sceneName
			cfg.ThumbnailWidth = tt.thumbnail

			result, err := runRender(context.Background(), cfg, zerolog.Nop())
			if err != nil {
				t.Fatalf("runRender() error: %v", err)
			}

			if !strings.HasPrefix(result.Path, filepath.Join(cfg.OutputDir, tt.sceneName)) {
				t.Errorf("Expected render under %s/%s, got %s", cfg.OutputDir, tt.sceneName, result.Path)
			}
			file, err := os.Open(result.Path)
			if err != nil {
				t.Fatalf("Render not written: %v", err)
			}
			defer file.Close()
			if _, err := png.Decode(file); err != nil {
				t.Errorf("Render is not a valid PNG: %v", err)
			}

			if tt.thumbnail > 0 {
				if _, err := os.Stat(result.ThumbnailPath); err != nil {
					t.Errorf("Thumbnail not written: %v", err)
				}
			} else if result.ThumbnailPath != "" {
				t.Errorf("Unexpected thumbnail %s", result.ThumbnailPath)
			}
		})
	}
}

func TestRunRender_ExplicitOutput(t *testing.T) {
	cfg := smallConfig(t)
	cfg.OutputFile = filepath.Join(t.TempDir(), "nested", "out.png")

	result, err := runRender(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("runRender() error: %v", err)
	}
	if result.Path != cfg.OutputFile {
		t.Errorf("Expected %s, got %s", cfg.OutputFile, result.Path)
	}
	if result.Stats.TotalPixels != cfg.Width*cfg.Height {
		t.Errorf("Expected %d pixels, got %d", cfg.Width*cfg.Height, result.Stats.TotalPixels)
	}
}

func TestRunRender_UnknownScene(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Scene = "nonexistent"
	cfg.ScenesDir = t.TempDir()

	if _, err := runRender(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("Expected error for unknown scene")
	}
}

func TestThumbnailPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"output/random/render_1.png", "output/random/render_1_thumb.png"},
		{"out", "out_thumb"},
	}
	for _, tt := range tests {
		if got := thumbnailPath(tt.input); got != tt.expected {
			t.Errorf("thumbnailPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "cmd.png")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"render",
		"--env-file", filepath.Join(t.TempDir(), "none.env"),
		"--width", "32", "--height", "24", "--spheres", "5",
		"--composite", "overwrite",
		"--output", outputFile,
		"--log-level", "warn",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("render command failed: %v (%s)", err, stderr.String())
	}
	if strings.TrimSpace(stdout.String()) != outputFile {
		t.Errorf("Expected output path on stdout, got %q", stdout.String())
	}
	if _, err := os.Stat(outputFile); err != nil {
		t.Errorf("Render not written: %v", err)
	}
}

func TestRenderCommand_InvalidComposite(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", "--composite", "depth", "--env-file", filepath.Join(t.TempDir(), "none.env")})

	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for invalid composite mode")
	}
}

func TestScenesCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.yaml"), []byte("name: mine\ndescription: test scene\n"), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"scenes", "--scenes-dir", dir, "--env-file", filepath.Join(dir, "none.env")})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("scenes command failed: %v", err)
	}

	out := stdout.String()
	for _, builtin := range scene.BuiltinScenes {
		if !strings.Contains(out, builtin.ID) {
			t.Errorf("Expected builtin %s in output:\n%s", builtin.ID, out)
		}
	}
	if !strings.Contains(out, "mine") || !strings.Contains(out, "test scene") {
		t.Errorf("Expected file scene in output:\n%s", out)
	}
}

func TestMustBindFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("tile-size", 64, "")

	v := viper.New()
	mustBindFlag(v, "tile_size", flags, "tile-size")
	if err := flags.Parse([]string{"--tile-size", "16"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := v.GetInt("tile_size"); got != 16 {
		t.Errorf("Expected bound key to follow the flag, got %d", got)
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic when binding an undeclared flag")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "--tile-sise") {
			t.Errorf("Expected panic to name the flag, got %v", r)
		}
	}()
	mustBindFlag(v, "tile_size", flags, "tile-sise")
}

func TestNewRootCmd_BindsEveryFlag(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Building the command tree panicked: %v", r)
		}
	}()
	if cmd := newRootCmd(); len(cmd.Commands()) != 2 {
		t.Errorf("Expected render and scenes subcommands, got %d", len(cmd.Commands()))
	}
}
