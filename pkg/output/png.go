package output

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"
)

// EncodePNG writes img to w as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// PNGBytes encodes img into an in-memory PNG
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes img to path, creating parent directories as needed
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := EncodePNG(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// RenderPath returns <dir>/<sceneName>/render_<timestamp>.png
func RenderPath(dir, sceneName string, at time.Time) string {
	filename := fmt.Sprintf("render_%s.png", at.Format("20060102_150405"))
	return filepath.Join(dir, sceneName, filename)
}
