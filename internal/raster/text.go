package raster

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"gonum.org/v1/gonum/spatial/r2"
)

// TextSize is the on-screen height of annotation text.
const TextSize = 24.0

var boldFont = sync.OnceValues(func() (*truetype.Font, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return f, nil
})

// face returns a bold face of the given pixel size. Faces cache glyphs and
// are not safe for concurrent use, so each surface keeps its own.
func (s *Surface) face(size float64) (font.Face, error) {
	size = math.Round(size*100) / 100
	if f, ok := s.faces[size]; ok {
		return f, nil
	}
	ttf, err := boldFont()
	if err != nil {
		return nil, err
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	if s.faces == nil {
		s.faces = make(map[float64]font.Face)
	}
	s.faces[size] = f
	return f, nil
}

// DrawText paints text with its top-left corner at anchor. sizePx is the
// on-screen size and is divided by scale.
func (s *Surface) DrawText(anchor r2.Vec, text string, col color.Color, sizePx, scale float64) error {
	if s.Empty() || text == "" {
		return nil
	}
	size := Style{Scale: scale}.px(sizePx)
	if size <= 0 {
		return nil
	}
	f, err := s.face(size)
	if err != nil {
		return err
	}
	ascent := float64(f.Metrics().Ascent) / 64
	s.dc.SetFontFace(f)
	s.dc.SetColor(col)
	s.dc.DrawString(text, anchor.X, anchor.Y+ascent)
	return nil
}

// MeasureText returns the width and height text would occupy at the given
// on-screen size and scale.
func (s *Surface) MeasureText(text string, sizePx, scale float64) (float64, float64) {
	size := Style{Scale: scale}.px(sizePx)
	if size <= 0 || text == "" {
		return 0, 0
	}
	f, err := s.face(size)
	if err != nil {
		return 0, 0
	}
	w := float64(font.MeasureString(f, text)) / 64
	m := f.Metrics()
	return w, float64(m.Ascent+m.Descent) / 64
}
