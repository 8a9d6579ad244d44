package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/maskdraw/internal/mask"
)

// loadImage decodes a PNG or JPEG file.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// maskPath derives the default mask path for src: "<name>-mask.png" in dir,
// or next to src when dir is empty.
func maskPath(src, dir string) string {
	base := filepath.Base(src)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "-mask.png"
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, name)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeImage(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := mask.EncodePNG(&buf, img); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
