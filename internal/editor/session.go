// Package editor drives one annotation session: pointer gestures go through
// the viewport into the active tool, which mutates the raster surface and
// records history; every committed change re-derives the mask.
package editor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/example/maskdraw/internal/history"
	"github.com/example/maskdraw/internal/mask"
	"github.com/example/maskdraw/internal/raster"
	"github.com/example/maskdraw/internal/viewport"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrNotLoaded   = errors.New("no image loaded")
	ErrNoChanges   = errors.New("no changes to submit")
	ErrEmptyImage  = errors.New("image has no pixels")
	ErrUnknownTool = errors.New("unknown tool")
)

// DefaultColor is the initial annotation color, #FF4081.
var DefaultColor = color.RGBA{R: 0xFF, G: 0x40, B: 0x81, A: 0xFF}

// Phase is the interaction state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePanning
	PhaseDrawing
	PhaseAwaitingText
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePanning:
		return "panning"
	case PhaseDrawing:
		return "drawing"
	case PhaseAwaitingText:
		return "awaitingText"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Session is a single-threaded editor. Callers that share one between
// goroutines must serialise access.
type Session struct {
	view    *viewport.Viewport
	surface *raster.Surface
	hist    *history.Stack
	emitter *mask.Emitter
	photo   *image.RGBA
	loaded  bool

	tool       Tool
	color      color.RGBA
	brushWidth float64
	threshold  uint8

	phase   Phase
	active  gesture
	base    raster.Snapshot
	pending *PendingAnnotation

	hasChanges bool

	onMask   mask.Listener
	onChange func(bool)
	onSubmit func([]byte)
	onCancel func()
	histOpts []history.Option
	log      *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithColor sets the initial annotation color.
func WithColor(c color.Color) Option {
	return func(s *Session) { s.color = color.RGBAModel.Convert(c).(color.RGBA) }
}

// WithTool sets the initial tool. Unknown tools are ignored.
func WithTool(t Tool) Option {
	return func(s *Session) {
		if t.Valid() {
			s.tool = t
		}
	}
}

// WithMaskListener receives every re-derived mask as PNG bytes. It runs on
// the encoder goroutine.
func WithMaskListener(l mask.Listener) Option {
	return func(s *Session) { s.onMask = l }
}

// WithChangeListener is called when the unsaved changes flag flips.
func WithChangeListener(fn func(bool)) Option {
	return func(s *Session) { s.onChange = fn }
}

// WithSubmitListener receives the mask handed over by Submit.
func WithSubmitListener(fn func([]byte)) Option {
	return func(s *Session) { s.onSubmit = fn }
}

// WithCancelListener is called by Cancel.
func WithCancelListener(fn func()) Option {
	return func(s *Session) { s.onCancel = fn }
}

// WithHistoryLimits caps retained history. Zero disables a cap.
func WithHistoryLimits(maxEntries, maxBytes int) Option {
	return func(s *Session) {
		s.histOpts = append(s.histOpts, history.WithMaxEntries(maxEntries), history.WithMaxBytes(maxBytes))
	}
}

// WithMaskThreshold sets the alpha above which a pixel counts as annotated.
func WithMaskThreshold(t uint8) Option {
	return func(s *Session) { s.threshold = t }
}

// WithBrushWidth sets the on-screen width of brush and rectangle strokes.
func WithBrushWidth(w float64) Option {
	return func(s *Session) {
		if w > 0 {
			s.brushWidth = w
		}
	}
}

// WithLogger overrides the package logger for this session.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a session with no image. Every operation is a no-op until
// Load succeeds.
func New(opts ...Option) *Session {
	s := &Session{
		view:       viewport.New(),
		surface:    raster.New(0, 0),
		tool:       ToolPan,
		color:      DefaultColor,
		brushWidth: DefaultBrushWidth,
		log:        Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	s.hist = history.New(s.histOpts...)
	s.emitter = mask.NewEmitter(s.onMask, mask.WithThreshold(s.threshold), mask.WithLogger(s.log))
	return s
}

// Load installs img as the source photo, allocates a blank overlay of the
// same size, resets history and fits the image into the container.
func (s *Session) Load(img image.Image, containerW, containerH float64) error {
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}
	b := img.Bounds()
	photo := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(photo, photo.Bounds(), img, b.Min, draw.Src)

	s.photo = photo
	s.surface = raster.New(b.Dx(), b.Dy())
	s.hist.Reset(s.surface.Snapshot())
	s.view.FitToScreen(float64(b.Dx()), float64(b.Dy()), containerW, containerH)
	s.view.SetContainer(containerW, containerH)
	s.phase, s.active, s.pending = PhaseIdle, nil, nil
	s.base = raster.Snapshot{}
	s.loaded = true
	s.setChanged(false)
	s.log.Debug("image loaded", "width", b.Dx(), "height", b.Dy(), "scale", s.view.Scale())
	s.emit()
	return nil
}

// Resize records a new container size. The zoom is kept; ResetZoom re-fits.
func (s *Session) Resize(w, h float64) {
	s.view.SetContainer(w, h)
}

// SetTool selects the tool for the next gesture.
func (s *Session) SetTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTool, string(t))
	}
	s.tool = t
	return nil
}

func (s *Session) Tool() Tool { return s.tool }

// SetColor sets the color used by subsequent strokes and text.
func (s *Session) SetColor(c color.Color) {
	s.color = color.RGBAModel.Convert(c).(color.RGBA)
}

func (s *Session) Color() color.RGBA { return s.color }

// Phase reports the current interaction state.
func (s *Session) Phase() Phase { return s.phase }

// PointerDown starts a gesture. Pan wins when forced by the pointer or
// selected; drawing is refused while another gesture runs or text is
// awaited.
func (s *Session) PointerDown(p Pointer) {
	if !s.loaded || s.active != nil {
		return
	}
	img := s.view.ToImage(p.Pos)
	if p.forcesPan() || s.tool == ToolPan {
		g := &panGesture{}
		g.start(s, img, p.Pos)
		s.active, s.phase = g, PhasePanning
		return
	}
	if s.phase == PhaseAwaitingText {
		return
	}
	g := newGesture(s.tool)
	if g == nil {
		return
	}
	g.start(s, img, p.Pos)
	if s.phase == PhaseAwaitingText {
		return
	}
	s.active, s.phase = g, PhaseDrawing
	s.log.Debug("gesture started", "tool", s.tool.String())
}

// PointerMove feeds the running gesture.
func (s *Session) PointerMove(p Pointer) {
	if !s.loaded || s.active == nil {
		return
	}
	s.active.move(s, s.view.ToImage(p.Pos), p.Pos)
}

// PointerUp ends the running gesture.
func (s *Session) PointerUp(p Pointer) {
	if !s.loaded || s.active == nil {
		return
	}
	g := s.active
	s.active = nil
	if s.pending != nil {
		s.phase = PhaseAwaitingText
	} else {
		s.phase = PhaseIdle
	}
	g.end(s, s.view.ToImage(p.Pos), p.Pos)
}

// PointerLeave ends the running gesture as if the pointer were released.
func (s *Session) PointerLeave(p Pointer) { s.PointerUp(p) }

// Wheel zooms about the pointer. Negative deltas zoom in.
func (s *Session) Wheel(deltaY float64, pos r2.Vec) {
	if s.loaded {
		s.view.Wheel(deltaY, pos)
	}
}

func (s *Session) ZoomIn() {
	if s.loaded {
		s.view.ZoomIn()
	}
}

func (s *Session) ZoomOut() {
	if s.loaded {
		s.view.ZoomOut()
	}
}

// ResetZoom fits the image into the container again.
func (s *Session) ResetZoom() {
	if s.loaded {
		s.view.Reset()
	}
}

// Viewport exposes the transform. Mutating it directly bypasses the session.
func (s *Session) Viewport() *viewport.Viewport { return s.view }

// Undo steps back one history entry. At the floor it re-asserts entry 0.
// Landing on entry 0 clears the unsaved changes flag.
func (s *Session) Undo() {
	if !s.loaded || s.active != nil {
		return
	}
	s.CancelAnnotation()
	snap, _ := s.hist.Undo()
	s.surface.Restore(snap)
	if s.hist.Step() == 0 {
		s.setChanged(false)
	}
	s.log.Debug("undo", "step", s.hist.Step(), "len", s.hist.Len())
	s.emit()
}

// Redo moves forward one history entry if one exists.
func (s *Session) Redo() {
	if !s.loaded || s.active != nil {
		return
	}
	s.CancelAnnotation()
	snap, ok := s.hist.Redo()
	if !ok {
		return
	}
	s.surface.Restore(snap)
	s.setChanged(true)
	s.log.Debug("redo", "step", s.hist.Step(), "len", s.hist.Len())
	s.emit()
}

// Clear erases the overlay and records the blank state in history.
func (s *Session) Clear() {
	if !s.loaded {
		return
	}
	s.abortGesture()
	s.pending = nil
	s.phase = PhaseIdle
	s.surface.Clear()
	s.hist.Commit(s.surface.Snapshot())
	s.setChanged(false)
	s.emit()
}

func (s *Session) HasChanges() bool { return s.hasChanges }
func (s *Session) CanUndo() bool    { return s.loaded && s.hist.CanUndo() }
func (s *Session) CanRedo() bool    { return s.loaded && s.hist.CanRedo() }

// History reports the current step and number of retained entries.
func (s *Session) History() (step, length int) {
	return s.hist.Step(), s.hist.Len()
}

// Surface exposes the live overlay.
func (s *Session) Surface() *raster.Surface { return s.surface }

// Composite returns the photo with the overlay drawn over it.
func (s *Session) Composite() *image.RGBA {
	if !s.loaded {
		return nil
	}
	out := image.NewRGBA(s.photo.Bounds())
	draw.Draw(out, out.Bounds(), s.photo, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), s.surface.Image(), image.Point{}, draw.Over)
	return out
}

// Mask encodes the mask of the last committed state.
func (s *Session) Mask() ([]byte, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	cur, _ := s.hist.Current()
	return mask.Encode(cur.Snapshot.Image(), s.threshold)
}

// Submit encodes the committed mask and hands it to the submit listener.
// It returns ErrNoChanges, and does nothing, when there is nothing new.
func (s *Session) Submit() error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if !s.hasChanges {
		return ErrNoChanges
	}
	data, err := s.Mask()
	if err != nil {
		return err
	}
	if s.onSubmit != nil {
		s.onSubmit(data)
	}
	s.log.Info("mask submitted", "bytes", len(data))
	return nil
}

// Cancel aborts any running gesture or open annotation and notifies the
// cancel listener.
func (s *Session) Cancel() {
	if s.loaded {
		s.abortGesture()
		s.CancelAnnotation()
	}
	if s.onCancel != nil {
		s.onCancel()
	}
}

// Close waits for pending mask deliveries and stops the encoder.
func (s *Session) Close() {
	s.emitter.Close()
}

// Flush waits until every emitted mask has been delivered.
func (s *Session) Flush() {
	s.emitter.Flush()
}

func (s *Session) abortGesture() {
	if s.active == nil {
		return
	}
	if s.phase == PhaseDrawing {
		s.surface.EndStroke()
		s.surface.Restore(s.base)
	}
	s.active = nil
	s.phase = PhaseIdle
	if s.pending != nil {
		s.phase = PhaseAwaitingText
	}
}

func (s *Session) commit() {
	s.hist.Commit(s.surface.Snapshot())
	s.base = raster.Snapshot{}
	s.setChanged(true)
	s.log.Debug("commit", "step", s.hist.Step(), "len", s.hist.Len(), "bytes", s.hist.Bytes())
	s.emit()
}

// rollback restores the current history entry, discarding uncommitted
// pixels. At the floor it also clears the unsaved changes flag.
func (s *Session) rollback() {
	cur, ok := s.hist.Current()
	if !ok {
		return
	}
	s.surface.Restore(cur.Snapshot)
	if s.hist.Step() == 0 {
		s.setChanged(false)
	}
	s.emit()
}

func (s *Session) emit() {
	cur, ok := s.hist.Current()
	if !ok {
		return
	}
	s.emitter.Emit(cur.Snapshot)
}

func (s *Session) setChanged(v bool) {
	if s.hasChanges == v {
		return
	}
	s.hasChanges = v
	if s.onChange != nil {
		s.onChange(v)
	}
}
