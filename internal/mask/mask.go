// Package mask derives the binary stencil handed to the region edit backend.
package mask

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

var (
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	black = color.RGBA{A: 0xFF}
)

// Extract returns an opaque image the size of src. Pixels whose alpha is
// above threshold become white, all others black.
func Extract(src image.Image, threshold uint8) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if rgba, ok := src.(*image.RGBA); ok {
		extractRGBA(out, rgba, threshold)
		return out
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if uint8(a>>8) > threshold {
				out.SetRGBA(x, y, white)
			} else {
				out.SetRGBA(x, y, black)
			}
		}
	}
	return out
}

func extractRGBA(out, src *image.RGBA, threshold uint8) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := out.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			v := uint8(0)
			if src.Pix[si+3] > threshold {
				v = 0xFF
			}
			out.Pix[di], out.Pix[di+1], out.Pix[di+2], out.Pix[di+3] = v, v, v, 0xFF
			si += 4
			di += 4
		}
	}
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode mask: %w", err)
	}
	return nil
}

// Encode extracts the mask of src and returns it PNG encoded.
func Encode(src image.Image, threshold uint8) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, Extract(src, threshold)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
