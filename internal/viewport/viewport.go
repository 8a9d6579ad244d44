// Package viewport maps between screen coordinates and image coordinates
// under a pan offset and a zoom scale.
package viewport

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// MinScale and MaxScale bound every zoom request.
	MinScale = 0.1
	MaxScale = 5.0

	// FitMargin is the share of the container the image occupies after a fit.
	FitMargin = 0.95

	// WheelSensitivity converts wheel delta units into scale units.
	WheelSensitivity = 0.002

	// ButtonStep is the scale increment applied by ZoomIn and ZoomOut.
	ButtonStep = 0.5
)

// Viewport holds the zoom scale and the screen-space offset of the image
// origin. The zero value is not usable; call New.
type Viewport struct {
	scale  float64
	offset r2.Vec

	image     r2.Vec
	container r2.Vec
}

// New returns a viewport at scale 1 with no offset.
func New() *Viewport {
	return &Viewport{scale: 1}
}

// Scale reports the current zoom factor.
func (v *Viewport) Scale() float64 { return v.scale }

// Offset reports the screen position of the image origin.
func (v *Viewport) Offset() r2.Vec { return v.offset }

// Set replaces scale and offset. The scale is clamped.
func (v *Viewport) Set(scale float64, offset r2.Vec) {
	v.scale = clamp(scale)
	v.offset = offset
}

// ToImage converts a screen point into image space.
func (v *Viewport) ToImage(screen r2.Vec) r2.Vec {
	return r2.Scale(1/v.scale, r2.Sub(screen, v.offset))
}

// ToScreen converts an image point into screen space.
func (v *Viewport) ToScreen(img r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(v.scale, img), v.offset)
}

// SetContainer records the container size used for centre zoom and Reset.
func (v *Viewport) SetContainer(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	v.container = r2.Vec{X: w, Y: h}
}

// FitToScreen picks the largest scale that fits the image inside FitMargin
// of the container on the constraining axis and centres it.
func (v *Viewport) FitToScreen(imageW, imageH, containerW, containerH float64) {
	if imageW <= 0 || imageH <= 0 || containerW <= 0 || containerH <= 0 {
		return
	}
	v.image = r2.Vec{X: imageW, Y: imageH}
	v.container = r2.Vec{X: containerW, Y: containerH}

	var scale float64
	if imageW/imageH > containerW/containerH {
		scale = containerW * FitMargin / imageW
	} else {
		scale = containerH * FitMargin / imageH
	}
	v.scale = clamp(scale)
	v.offset = r2.Vec{
		X: (containerW - imageW*v.scale) / 2,
		Y: (containerH - imageH*v.scale) / 2,
	}
}

// Reset re-fits the last image into the last container.
func (v *Viewport) Reset() {
	v.FitToScreen(v.image.X, v.image.Y, v.container.X, v.container.Y)
}

// ZoomAt changes the scale while keeping the image point under anchor fixed.
func (v *Viewport) ZoomAt(newScale float64, anchor r2.Vec) {
	if math.IsNaN(newScale) {
		return
	}
	p := v.ToImage(anchor)
	v.scale = clamp(newScale)
	v.offset = r2.Sub(anchor, r2.Scale(v.scale, p))
}

// Wheel applies a wheel delta anchored at the pointer. Negative deltas zoom in.
func (v *Viewport) Wheel(deltaY float64, anchor r2.Vec) {
	v.ZoomAt(v.scale-deltaY*WheelSensitivity, anchor)
}

// ZoomIn zooms about the container centre by ButtonStep.
func (v *Viewport) ZoomIn() { v.ZoomAt(v.scale+ButtonStep, v.centre()) }

// ZoomOut zooms about the container centre by ButtonStep.
func (v *Viewport) ZoomOut() { v.ZoomAt(v.scale-ButtonStep, v.centre()) }

// Pan moves the image by a screen-space delta.
func (v *Viewport) Pan(delta r2.Vec) {
	v.offset = r2.Add(v.offset, delta)
}

// ScreenLength converts a constant on-screen length into image pixels.
func (v *Viewport) ScreenLength(px float64) float64 {
	return px / v.scale
}

func (v *Viewport) centre() r2.Vec {
	return r2.Scale(0.5, v.container)
}

func clamp(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
