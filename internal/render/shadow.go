// Package render holds window effects that sit outside the editing surface.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures a drop shadow cast by a floating box.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions suits small popups over a photo.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  6,
		Offset:  image.Pt(3, 4),
		Opacity: 0.45,
	}
}

// DropShadow darkens dst beneath r as if a box at r floated above it. Only
// the blurred halo is drawn; the caller paints the box itself afterwards.
func DropShadow(dst *image.RGBA, r image.Rectangle, opts ShadowOptions) {
	if dst == nil || r.Empty() || opts.Opacity <= 0 {
		return
	}
	opacity := min(opts.Opacity, 1)
	radius := max(opts.Radius, 0)

	padded := r.Inset(-radius)
	mask := image.NewGray(image.Rect(0, 0, padded.Dx(), padded.Dy()))
	inner := r.Sub(padded.Min)
	draw.Draw(mask, inner, image.NewUniform(color.Gray{Y: 0xFF}), image.Point{}, draw.Src)

	blurred := blurGray(mask, radius)
	alpha := uint8(opacity*255 + 0.5)
	if alpha == 0 {
		return
	}
	draw.DrawMask(dst, padded.Add(opts.Offset), image.NewUniform(color.RGBA{A: alpha}), image.Point{}, blurred, image.Point{}, draw.Over)
}

// blurGray is a separable box blur using running sums.
func blurGray(src *image.Gray, radius int) *image.Gray {
	out := image.NewGray(src.Bounds())
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	tmp := image.NewGray(src.Bounds())
	boxPass(src.Pix, tmp.Pix, w, h, src.Stride, 1, radius)
	boxPass(tmp.Pix, out.Pix, h, w, 1, tmp.Stride, radius)
	return out
}

// boxPass averages along lines of n samples. step moves along a line and
// stride moves to the next line.
func boxPass(src, dst []uint8, n, lines, stride, step, radius int) {
	prefix := make([]int, n+1)
	for l := 0; l < lines; l++ {
		base := l * stride
		for i := 0; i < n; i++ {
			prefix[i+1] = prefix[i] + int(src[base+i*step])
		}
		for i := 0; i < n; i++ {
			i0 := max(i-radius, 0)
			i1 := min(i+radius, n-1)
			dst[base+i*step] = uint8((prefix[i1+1] - prefix[i0]) / (i1 - i0 + 1))
		}
	}
}
