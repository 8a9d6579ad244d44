package editor

import (
	"fmt"
	"strings"

	"github.com/example/maskdraw/internal/raster"
	"gonum.org/v1/gonum/spatial/r2"
)

// Tool names one of the closed set of interaction tools.
type Tool string

const (
	ToolPan       Tool = "pan"
	ToolBrush     Tool = "brush"
	ToolRectangle Tool = "rectangle"
	ToolArrow     Tool = "arrow"
	ToolText      Tool = "text"
	ToolComment   Tool = "comment"
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolPan, ToolBrush, ToolRectangle, ToolArrow, ToolText, ToolComment}

// ParseTool accepts a tool name, case-insensitively. "rect" is accepted for
// the rectangle tool.
func ParseTool(s string) (Tool, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "rect" {
		return ToolRectangle, nil
	}
	for _, t := range Tools {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// Valid reports whether t is one of Tools.
func (t Tool) Valid() bool {
	for _, v := range Tools {
		if v == t {
			return true
		}
	}
	return false
}

func (t Tool) String() string { return string(t) }

// Stroke widths in screen pixels.
const (
	DefaultBrushWidth = 8.0
	ArrowWidth        = 6.0
	CommentWidth      = 4.0
	CommentDash       = 10.0
)

// gesture is one start/move/end interaction. img is the image-space point
// and screen the raw pointer position.
type gesture interface {
	start(s *Session, img, screen r2.Vec)
	move(s *Session, img, screen r2.Vec)
	end(s *Session, img, screen r2.Vec)
}

// newGesture picks the gesture for a tool. Text has no drag phase and
// returns nil after opening the popup.
func newGesture(t Tool) gesture {
	switch t {
	case ToolPan:
		return &panGesture{}
	case ToolBrush:
		return &brushGesture{}
	case ToolRectangle, ToolArrow, ToolComment:
		return &shapeGesture{tool: t}
	case ToolText:
		return textGesture{}
	}
	return nil
}

type panGesture struct {
	last r2.Vec
}

func (g *panGesture) start(_ *Session, _, screen r2.Vec) { g.last = screen }

func (g *panGesture) move(s *Session, _, screen r2.Vec) {
	s.view.Pan(r2.Sub(screen, g.last))
	g.last = screen
}

func (g *panGesture) end(*Session, r2.Vec, r2.Vec) {}

type brushGesture struct{}

func (brushGesture) start(s *Session, img, _ r2.Vec) {
	s.base = s.surface.Snapshot()
	s.surface.BeginStroke(img, s.style(s.brushWidth, nil))
}

func (brushGesture) move(s *Session, img, _ r2.Vec) {
	s.surface.ExtendStroke(img)
}

func (brushGesture) end(s *Session, _, _ r2.Vec) {
	s.surface.EndStroke()
	s.commit()
}

// shapeGesture previews a rectangle, arrow or comment box by restoring the
// pre-drag snapshot and redrawing the whole shape on each move.
type shapeGesture struct {
	tool   Tool
	anchor r2.Vec
	last   r2.Vec
}

func (g *shapeGesture) start(s *Session, img, _ r2.Vec) {
	g.anchor, g.last = img, img
	s.base = s.surface.Snapshot()
}

func (g *shapeGesture) move(s *Session, img, _ r2.Vec) {
	g.last = img
	s.surface.Restore(s.base)
	switch g.tool {
	case ToolRectangle:
		s.surface.StrokeRectangle(g.anchor, img, s.style(s.brushWidth, nil))
	case ToolComment:
		s.surface.StrokeRectangle(g.anchor, img, s.style(CommentWidth, []float64{CommentDash, CommentDash}))
	case ToolArrow:
		s.surface.StrokeArrow(g.anchor, img, s.style(ArrowWidth, nil))
	}
}

func (g *shapeGesture) end(s *Session, img, screen r2.Vec) {
	if img != g.last {
		g.move(s, img, screen)
	}
	if g.tool == ToolComment {
		s.openAnnotation(&PendingAnnotation{
			Kind:   AnnotationComment,
			Anchor: g.anchor,
			Size:   r2.Sub(img, g.anchor),
			base:   s.base,
		})
		return
	}
	s.commit()
}

type textGesture struct{}

func (textGesture) start(s *Session, img, _ r2.Vec) {
	s.openAnnotation(&PendingAnnotation{Kind: AnnotationText, Anchor: img})
}

func (textGesture) move(*Session, r2.Vec, r2.Vec) {}
func (textGesture) end(*Session, r2.Vec, r2.Vec)  {}

func (s *Session) style(width float64, dash []float64) raster.Style {
	return raster.Style{Color: s.color, Width: width, Dash: dash, Scale: s.view.Scale()}
}
