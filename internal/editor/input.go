package editor

import (
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"gonum.org/v1/gonum/spatial/r2"
)

// Button identifies the pointer button behind an event.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Modifiers is a bit set of held keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Pointer is one pointer sample in screen pixels.
type Pointer struct {
	Pos    r2.Vec
	Button Button
	Mods   Modifiers
}

// At returns a left-button pointer at x, y.
func At(x, y float64) Pointer {
	return Pointer{Pos: r2.Vec{X: x, Y: y}, Button: ButtonLeft}
}

// forcesPan reports whether the sample must pan whatever tool is selected.
func (p Pointer) forcesPan() bool {
	return p.Button == ButtonMiddle || p.Mods&(ModCtrl|ModMeta) != 0
}

// WheelNotch is the delta one wheel click contributes.
const WheelNotch = 100.0

// PointerFromMouse converts a mouse event.
func PointerFromMouse(e mouse.Event) Pointer {
	p := Pointer{Pos: r2.Vec{X: float64(e.X), Y: float64(e.Y)}}
	switch e.Button {
	case mouse.ButtonLeft:
		p.Button = ButtonLeft
	case mouse.ButtonMiddle:
		p.Button = ButtonMiddle
	case mouse.ButtonRight:
		p.Button = ButtonRight
	}
	if e.Modifiers&key.ModShift != 0 {
		p.Mods |= ModShift
	}
	if e.Modifiers&key.ModControl != 0 {
		p.Mods |= ModCtrl
	}
	if e.Modifiers&key.ModAlt != 0 {
		p.Mods |= ModAlt
	}
	if e.Modifiers&key.ModMeta != 0 {
		p.Mods |= ModMeta
	}
	return p
}

// HandleMouse routes a mouse event to the pointer and wheel operations.
// It reports whether the session consumed the event.
func (s *Session) HandleMouse(e mouse.Event) bool {
	if !s.loaded {
		return false
	}
	p := PointerFromMouse(e)
	if e.Button.IsWheel() {
		if e.Direction != mouse.DirStep && e.Direction != mouse.DirPress {
			return false
		}
		switch e.Button {
		case mouse.ButtonWheelUp:
			s.Wheel(-WheelNotch, p.Pos)
		case mouse.ButtonWheelDown:
			s.Wheel(WheelNotch, p.Pos)
		default:
			return false
		}
		return true
	}
	switch e.Direction {
	case mouse.DirPress:
		s.PointerDown(p)
	case mouse.DirRelease:
		s.PointerUp(p)
	case mouse.DirNone:
		s.PointerMove(p)
	default:
		return false
	}
	return true
}
