//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func TestWriteWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	initOnce = sync.Once{}
	initErr = nil

	err := WriteImage(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
	if _, err := ReadImage(); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
}

func TestWritePNGRejectsEmpty(t *testing.T) {
	if err := WritePNG(nil); err == nil {
		t.Fatal("expected error")
	}
}
