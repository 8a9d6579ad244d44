// Package clipboard publishes masks to, and reads source photos from, the
// system clipboard as PNG data.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
)

var (
	ErrNoImage   = errors.New("clipboard does not contain image data")
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

// WritePNG publishes already encoded PNG bytes.
func WritePNG(data []byte) error {
	if len(data) == 0 {
		return errors.New("refusing to publish an empty image")
	}
	return writePNG(data)
}

// WriteImage encodes img as PNG and publishes it.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}
	return WritePNG(buf.Bytes())
}

// ReadImage decodes the PNG currently on the clipboard.
func ReadImage() (image.Image, error) {
	data, err := readPNG()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard image: %w", err)
	}
	return img, nil
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
