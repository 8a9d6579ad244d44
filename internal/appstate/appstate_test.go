package appstate

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/theme"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"gonum.org/v1/gonum/spatial/r2"
)

const testW, testH = 240, 200

func newTestController(t *testing.T, opts ...editor.Option) *controller {
	t.Helper()
	s := editor.New(opts...)
	t.Cleanup(s.Close)
	a := New(WithSession(s), WithOutput(filepath.Join(t.TempDir(), "mask.png")))
	c := newController(a, testW, testH)
	if err := c.load(image.NewRGBA(image.Rect(0, 0, 100, 100))); err != nil {
		t.Fatal(err)
	}
	s.Viewport().Set(1, r2.Vec{})
	return c
}

// at converts canvas coordinates to a window mouse event.
func at(x, y float32, dir mouse.Direction) mouse.Event {
	return mouse.Event{X: x, Y: y + toolbarHeight, Button: mouse.ButtonLeft, Direction: dir}
}

func press(c *controller, r rune, code key.Code, mods key.Modifiers) bool {
	return c.handleKey(key.Event{Rune: r, Code: code, Modifiers: mods, Direction: key.DirPress})
}

func TestKeyLookup(t *testing.T) {
	c := newTestController(t)
	tests := []struct {
		name string
		ev   key.Event
		want string
	}{
		{"tool letter", key.Event{Rune: 'B', Code: key.CodeB}, "tool:brush"},
		{"ctrl without rune", key.Event{Rune: -1, Code: key.CodeZ, Modifiers: key.ModControl}, "undo"},
		{"ctrl control char", key.Event{Rune: 0x13, Code: key.CodeS, Modifiers: key.ModControl}, "save"},
		{"shifted redo", key.Event{Rune: 'Z', Code: key.CodeZ, Modifiers: key.ModControl | key.ModShift}, "redo"},
		{"shifted plus", key.Event{Rune: '+', Code: key.CodeEqualSign, Modifiers: key.ModShift}, "zoomin"},
		{"enter", key.Event{Rune: -1, Code: key.CodeReturnEnter}, "submit"},
	}
	for _, tt := range tests {
		got, ok := c.lookup(tt.ev)
		if !ok || got != tt.want {
			t.Errorf("%s: got %q %v, want %q", tt.name, got, ok, tt.want)
		}
	}
	if _, ok := c.lookup(key.Event{Rune: 'k', Code: key.CodeK}); ok {
		t.Error("unbound key resolved")
	}
}

func TestDrawRectangleThroughWindow(t *testing.T) {
	c := newTestController(t)
	press(c, 'r', key.CodeR, 0)
	if c.sess.Tool() != editor.ToolRectangle {
		t.Fatalf("tool = %v", c.sess.Tool())
	}
	c.handleMouse(at(10, 10, mouse.DirPress))
	c.handleMouse(at(50, 40, mouse.DirNone))
	c.handleMouse(at(50, 40, mouse.DirRelease))

	if _, n := c.sess.History(); n != 2 {
		t.Fatalf("history length %d, want 2", n)
	}
	if c.sess.Surface().Image().RGBAAt(30, 10).A == 0 {
		t.Error("rectangle edge not drawn at canvas-relative position")
	}

	press(c, -1, key.CodeZ, key.ModControl)
	if step, _ := c.sess.History(); step != 0 {
		t.Errorf("undo left step %d", step)
	}
}

func TestDragOffCanvasEndsGesture(t *testing.T) {
	c := newTestController(t)
	press(c, 'b', key.CodeB, 0)
	c.handleMouse(at(20, 20, mouse.DirPress))
	c.handleMouse(at(40, 20, mouse.DirNone))
	c.handleMouse(mouse.Event{X: 40, Y: 5, Direction: mouse.DirNone})

	if c.sess.Phase() != editor.PhaseIdle {
		t.Fatalf("phase %v after leaving canvas", c.sess.Phase())
	}
	if _, n := c.sess.History(); n != 2 {
		t.Fatalf("stroke not committed on leave, len %d", n)
	}
}

func TestTextPopupInput(t *testing.T) {
	c := newTestController(t)
	press(c, 't', key.CodeT, 0)
	c.handleMouse(at(30, 30, mouse.DirPress))
	c.handleMouse(at(30, 30, mouse.DirRelease))

	st := c.snapshot()
	if st.popup == nil || st.popup.at != image.Pt(30, 50) {
		t.Fatalf("popup = %+v", st.popup)
	}

	// shortcuts are text while the popup is open
	for _, r := range "hiq" {
		press(c, r, 0, 0)
	}
	press(c, -1, key.CodeDeleteBackspace, 0)
	if p, _ := c.sess.PendingAnnotation(); p.Input != "hi" {
		t.Fatalf("input = %q", p.Input)
	}
	if c.quit {
		t.Fatal("q quit while typing")
	}

	press(c, -1, key.CodeReturnEnter, 0)
	if _, ok := c.sess.PendingAnnotation(); ok {
		t.Fatal("annotation still open")
	}
	if _, n := c.sess.History(); n != 2 {
		t.Fatalf("text not committed, len %d", n)
	}
}

func TestToolbarButtons(t *testing.T) {
	c := newTestController(t)
	var clearBtn *CacheButton
	for _, b := range c.buttons {
		if b.Label() == "Clear" {
			clearBtn = b
		}
	}
	if clearBtn == nil {
		t.Fatal("no Clear button")
	}
	press(c, 'b', key.CodeB, 0)
	c.handleMouse(at(10, 10, mouse.DirPress))
	c.handleMouse(at(60, 10, mouse.DirRelease))
	if !c.sess.HasChanges() {
		t.Fatal("stroke did not register")
	}

	mid := clearBtn.Rect().Min.Add(image.Pt(2, 2))
	if !c.handleMouse(mouse.Event{X: float32(mid.X), Y: float32(mid.Y)}) || c.hover < 0 {
		t.Fatal("hover not tracked")
	}
	c.handleMouse(mouse.Event{X: float32(mid.X), Y: float32(mid.Y), Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if c.sess.HasChanges() {
		t.Error("Clear button did not clear")
	}
}

func TestSaveAndSubmit(t *testing.T) {
	var submitted []byte
	c := newTestController(t, editor.WithSubmitListener(func(b []byte) { submitted = b }))
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	press(c, -1, key.CodeReturnEnter, 0)
	if submitted != nil || c.msg.text != "nothing to submit" {
		t.Fatalf("submit without changes: %q", c.msg.text)
	}

	press(c, 'b', key.CodeB, 0)
	c.handleMouse(at(10, 10, mouse.DirPress))
	c.handleMouse(at(60, 60, mouse.DirRelease))
	press(c, -1, key.CodeS, key.ModControl)
	data, err := os.ReadFile(c.app.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatal("saved file is not a PNG")
	}

	press(c, -1, key.CodeReturnEnter, 0)
	if !bytes.Equal(submitted, data) {
		t.Error("submitted mask differs from saved mask")
	}
	if !c.msg.visible(fixed) {
		t.Error("message not shown")
	}
	// any click dismisses the banner first
	if !c.handleMouse(at(1, 1, mouse.DirPress)) || c.msg.visible(fixed) {
		t.Error("click did not dismiss message")
	}
}

func TestEscapeCancelsAndQuits(t *testing.T) {
	cancelled := false
	c := newTestController(t, editor.WithCancelListener(func() { cancelled = true }))
	press(c, -1, key.CodeEscape, 0)
	if !cancelled || !c.quit {
		t.Fatalf("cancelled %v quit %v", cancelled, c.quit)
	}
}

func TestRenderPlacesComposite(t *testing.T) {
	comp := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{0xFF, 0, 0, 0xFF}
	for i := 0; i < len(comp.Pix); i += 4 {
		copy(comp.Pix[i:], []uint8{red.R, red.G, red.B, red.A})
	}
	st := paintState{width: testW, height: testH, composite: comp, scale: 2, offset: r2.Vec{X: 5, Y: 7}, tool: editor.ToolPan}
	dst := image.NewRGBA(image.Rect(0, 0, testW, testH))
	th := theme.Default()
	paintFrame(context.Background(), dst, st, th, &backdrop{})

	if got := dst.RGBAAt(5+19, toolbarHeight+7+19); got != red {
		t.Errorf("inside composite = %v", got)
	}
	if got := dst.RGBAAt(5+21, toolbarHeight+7+5); got == red {
		t.Error("composite drawn past its scaled width")
	}
	if got := dst.RGBAAt(testW-1, 1); got != th.ToolbarBackground {
		t.Errorf("toolbar = %v", got)
	}
}

func TestPopupStaysOnCanvas(t *testing.T) {
	canvas := canvasRect(testW, testH)
	p := &popup{at: image.Pt(testW-10, testH)}
	r := p.rect(canvas)
	if !r.In(canvas) {
		t.Errorf("popup %v outside canvas %v", r, canvas)
	}
}

func TestInitialSize(t *testing.T) {
	if w, h := initialSize(image.Rect(0, 0, 4000, 3000)); w != maxWindowWidth || h != maxWindowHeight {
		t.Errorf("large photo = %dx%d", w, h)
	}
	if w, h := initialSize(image.Rect(0, 0, 10, 10)); w != minWindowWidth || h != minWindowHeight {
		t.Errorf("small photo = %dx%d", w, h)
	}
}
