package editor

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/example/maskdraw/internal/raster"
	"gonum.org/v1/gonum/spatial/r2"
)

// AnnotationKind distinguishes free text from a comment box.
type AnnotationKind int

const (
	AnnotationText AnnotationKind = iota + 1
	AnnotationComment
)

func (k AnnotationKind) String() string {
	switch k {
	case AnnotationText:
		return "text"
	case AnnotationComment:
		return "comment"
	}
	return "unknown"
}

// Popup offsets below the anchor, in screen pixels.
const (
	commentPopupGap = 10.0
	textPopupGap    = 20.0
	commentTextGap  = 10.0
)

// PendingAnnotation is the text input awaiting commit. Anchor and Size are in
// image pixels; Size is zero for text and may be negative for a comment
// dragged up or left.
type PendingAnnotation struct {
	Kind   AnnotationKind
	Anchor r2.Vec
	Size   r2.Vec
	Input  string

	base raster.Snapshot
}

// box returns the normalised top-left corner and size of a comment.
func (p *PendingAnnotation) box() (r2.Vec, r2.Vec) {
	tl := r2.Vec{X: math.Min(p.Anchor.X, p.Anchor.X+p.Size.X), Y: math.Min(p.Anchor.Y, p.Anchor.Y+p.Size.Y)}
	return tl, r2.Vec{X: math.Abs(p.Size.X), Y: math.Abs(p.Size.Y)}
}

func (s *Session) openAnnotation(p *PendingAnnotation) {
	s.pending = p
	s.phase = PhaseAwaitingText
	s.log.Debug("annotation opened", "kind", p.Kind.String())
}

// PendingAnnotation returns a copy of the open annotation.
func (s *Session) PendingAnnotation() (PendingAnnotation, bool) {
	if s.pending == nil {
		return PendingAnnotation{}, false
	}
	p := *s.pending
	p.base = raster.Snapshot{}
	return p, true
}

// PopupPosition returns the screen point where the text input belongs:
// beneath the comment box or a little below a text anchor.
func (s *Session) PopupPosition() (r2.Vec, bool) {
	if s.pending == nil {
		return r2.Vec{}, false
	}
	p := s.pending
	if p.Kind == AnnotationComment {
		tl, size := p.box()
		pt := s.view.ToScreen(tl)
		pt.Y += size.Y*s.view.Scale() + commentPopupGap
		return pt, true
	}
	pt := s.view.ToScreen(p.Anchor)
	pt.Y += textPopupGap
	return pt, true
}

// SetAnnotationInput stores in-progress text for the open annotation.
func (s *Session) SetAnnotationInput(text string) {
	if s.pending != nil {
		s.pending.Input = text
	}
}

// CommitAnnotation renders text for the open annotation. Blank text cancels
// a text annotation and rolls back a comment box to the last committed
// state.
func (s *Session) CommitAnnotation(text string) {
	p := s.pending
	if p == nil {
		return
	}
	s.closeAnnotation()
	text = strings.TrimSpace(text)
	if text == "" {
		if p.Kind == AnnotationComment {
			s.rollback()
		}
		return
	}

	pos := p.Anchor
	if p.Kind == AnnotationComment && p.Size.Y != 0 {
		tl, size := p.box()
		pos = r2.Vec{X: tl.X, Y: tl.Y + size.Y + s.view.ScreenLength(commentTextGap)}
	}
	if err := s.surface.DrawText(pos, text, s.color, raster.TextSize, s.view.Scale()); err != nil {
		s.log.LogAttrs(context.Background(), slog.LevelWarn, "draw annotation text", slog.Any("err", err))
	}
	s.commit()
}

// CommitPendingInput commits the text stored with SetAnnotationInput.
func (s *Session) CommitPendingInput() {
	if s.pending != nil {
		s.CommitAnnotation(s.pending.Input)
	}
}

// CancelAnnotation discards the open annotation. A comment box is erased by
// restoring the pre-drag snapshot; history is untouched.
func (s *Session) CancelAnnotation() {
	p := s.pending
	if p == nil {
		return
	}
	s.closeAnnotation()
	if p.Kind == AnnotationComment {
		s.surface.Restore(p.base)
	}
}

func (s *Session) closeAnnotation() {
	s.pending = nil
	if s.phase == PhaseAwaitingText {
		s.phase = PhaseIdle
	}
}
