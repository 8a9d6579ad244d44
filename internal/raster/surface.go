// Package raster owns the annotation pixel buffer and the drawing primitives
// that mutate it. Every coordinate is in image pixels.
package raster

import (
	"bytes"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"gonum.org/v1/gonum/spatial/r2"
)

// Style describes how a primitive is painted. Width and Dash are given in
// screen pixels and divided by Scale so the result keeps a constant on-screen
// size regardless of zoom.
type Style struct {
	Color color.Color
	Width float64
	Dash  []float64
	Scale float64
}

func (s Style) px(v float64) float64 {
	if s.Scale <= 0 {
		return v
	}
	return v / s.Scale
}

// Surface is a transparent RGBA buffer the size of the source image.
type Surface struct {
	img *image.RGBA
	dc  *gg.Context

	stroke *strokeState
	faces  map[float64]font.Face
}

type strokeState struct {
	last  r2.Vec
	style Style
	moved bool
}

// New allocates a transparent surface of the given size. Non-positive sizes
// produce an empty surface on which every primitive is a no-op.
func New(width, height int) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &Surface{img: img, dc: gg.NewContextForRGBA(img)}
}

// Bounds returns the surface rectangle, always anchored at the origin.
func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }

// Image exposes the live buffer. Callers must not retain it across edits.
func (s *Surface) Image() *image.RGBA { return s.img }

// Empty reports whether the surface has no pixels to draw on.
func (s *Surface) Empty() bool { return s.img.Bounds().Empty() }

// Clear makes every pixel fully transparent.
func (s *Surface) Clear() {
	clear(s.img.Pix)
	s.stroke = nil
}

// Snapshot is an immutable full copy of surface pixels.
type Snapshot struct {
	rect image.Rectangle
	pix  []uint8
}

// Bounds returns the rectangle the snapshot was taken from.
func (s Snapshot) Bounds() image.Rectangle { return s.rect }

// Size returns the snapshot payload in bytes.
func (s Snapshot) Size() int { return len(s.pix) }

// IsZero reports whether the snapshot was never captured.
func (s Snapshot) IsZero() bool { return s.pix == nil }

// Equal compares pixel content and bounds.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.rect == o.rect && bytes.Equal(s.pix, o.pix)
}

// Image returns a fresh RGBA copy of the snapshot.
func (s Snapshot) Image() *image.RGBA {
	img := image.NewRGBA(s.rect)
	copy(img.Pix, s.pix)
	return img
}

// Snapshot captures the current pixel content.
func (s *Surface) Snapshot() Snapshot {
	pix := make([]uint8, len(s.img.Pix))
	copy(pix, s.img.Pix)
	return Snapshot{rect: s.img.Bounds(), pix: pix}
}

// Restore overwrites the buffer with snap. It returns false and leaves the
// surface untouched when snap was taken from a surface of another size.
func (s *Surface) Restore(snap Snapshot) bool {
	if snap.IsZero() || snap.rect != s.img.Bounds() || len(snap.pix) != len(s.img.Pix) {
		return false
	}
	copy(s.img.Pix, snap.pix)
	return true
}

// HasContent reports whether any pixel is not fully transparent.
func (s *Surface) HasContent() bool {
	for i := 3; i < len(s.img.Pix); i += 4 {
		if s.img.Pix[i] != 0 {
			return true
		}
	}
	return false
}

func (s *Surface) prepare(st Style) {
	s.dc.SetColor(st.Color)
	s.dc.SetLineWidth(st.px(st.Width))
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	if len(st.Dash) == 0 {
		s.dc.SetDash()
		return
	}
	dash := make([]float64, len(st.Dash))
	for i, d := range st.Dash {
		dash[i] = st.px(d)
	}
	s.dc.SetDash(dash...)
}
