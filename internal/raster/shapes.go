package raster

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// ArrowHeadLength is the on-screen length of an arrow head.
	ArrowHeadLength = 25.0
	// ArrowHeadAngle is the half-angle between the shaft and each barb.
	ArrowHeadAngle = math.Pi / 6
)

// BeginStroke starts a freehand path at p. Nothing is painted until the
// path is extended or ended.
func (s *Surface) BeginStroke(p r2.Vec, st Style) {
	if s.Empty() {
		return
	}
	s.stroke = &strokeState{last: p, style: st}
}

// ExtendStroke paints the segment from the previous path point to p.
func (s *Surface) ExtendStroke(p r2.Vec) {
	if s.stroke == nil {
		return
	}
	s.prepare(s.stroke.style)
	s.dc.DrawLine(s.stroke.last.X, s.stroke.last.Y, p.X, p.Y)
	s.dc.Stroke()
	s.stroke.last = p
	s.stroke.moved = true
}

// EndStroke finishes the current freehand path. A path that was never
// extended leaves a round dot of the stroke width.
func (s *Surface) EndStroke() {
	st := s.stroke
	s.stroke = nil
	if st == nil || st.moved {
		return
	}
	s.prepare(st.style)
	s.dc.DrawCircle(st.last.X, st.last.Y, st.style.px(st.style.Width)/2)
	s.dc.Fill()
}

// StrokeFreehand paints a whole polyline with round caps and joins.
func (s *Surface) StrokeFreehand(points []r2.Vec, st Style) {
	if s.Empty() || len(points) < 2 {
		return
	}
	s.prepare(st)
	s.dc.NewSubPath()
	s.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	s.dc.Stroke()
}

// StrokeRectangle paints an unfilled rectangle between two corners. A Style
// with Dash set produces the dashed comment outline.
func (s *Surface) StrokeRectangle(p0, p1 r2.Vec, st Style) {
	if s.Empty() {
		return
	}
	x, y := math.Min(p0.X, p1.X), math.Min(p0.Y, p1.Y)
	w, h := math.Abs(p1.X-p0.X), math.Abs(p1.Y-p0.Y)
	s.prepare(st)
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.Stroke()
	s.dc.SetDash()
}

// StrokeArrow paints a shaft from one point to another and a filled
// triangular head at the destination.
func (s *Surface) StrokeArrow(from, to r2.Vec, st Style) {
	if s.Empty() {
		return
	}
	st.Dash = nil
	s.prepare(st)
	s.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	s.dc.Stroke()

	head := ArrowHead(from, to, st.Scale)
	s.dc.MoveTo(head[0].X, head[0].Y)
	s.dc.LineTo(head[1].X, head[1].Y)
	s.dc.LineTo(head[2].X, head[2].Y)
	s.dc.ClosePath()
	s.dc.Fill()
}

// ArrowHead returns the three corners of the head StrokeArrow would paint.
func ArrowHead(from, to r2.Vec, scale float64) [3]r2.Vec {
	head := Style{Scale: scale}.px(ArrowHeadLength)
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	return [3]r2.Vec{
		to,
		{X: to.X - head*math.Cos(angle-ArrowHeadAngle), Y: to.Y - head*math.Sin(angle-ArrowHeadAngle)},
		{X: to.X - head*math.Cos(angle+ArrowHeadAngle), Y: to.Y - head*math.Sin(angle+ArrowHeadAngle)},
	}
}
