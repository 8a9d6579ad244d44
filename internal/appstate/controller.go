package appstate

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/example/maskdraw/internal/clipboard"
	"github.com/example/maskdraw/internal/editor"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
)

const messageDuration = 2 * time.Second

// controller routes window events to the session. It runs entirely on the
// event goroutine.
type controller struct {
	app     *AppState
	sess    *editor.Session
	width   int
	height  int
	buttons []*CacheButton
	hover   int
	msg     message
	pressed bool
	quit    bool

	actions map[string]func()
	keys    map[KeyShortcut]string
	now     func() time.Time
}

var toolLabels = map[editor.Tool]string{
	editor.ToolPan:       "P:Pan",
	editor.ToolBrush:     "B:Brush",
	editor.ToolRectangle: "R:Rect",
	editor.ToolArrow:     "A:Arrow",
	editor.ToolText:      "T:Text",
	editor.ToolComment:   "C:Comment",
}

func newController(a *AppState, width, height int) *controller {
	c := &controller{
		app:     a,
		sess:    a.Session,
		width:   width,
		height:  height,
		hover:   -1,
		actions: map[string]func(){},
		keys:    map[KeyShortcut]string{},
		now:     time.Now,
	}
	c.register()
	layoutToolbar(c.buttons)
	return c
}

func (c *controller) add(name string, fn func(), keys ...KeyShortcut) {
	c.actions[name] = fn
	for _, k := range keys {
		c.keys[k] = name
	}
}

func (c *controller) button(label, action string, t editor.Tool) {
	name := action
	c.buttons = append(c.buttons, &CacheButton{Button: &labelButton{
		label:    label,
		tool:     t,
		action:   action,
		onSelect: func() { c.trigger(name) },
	}})
}

func (c *controller) register() {
	for _, t := range editor.Tools {
		t := t
		name := "tool:" + t.String()
		c.add(name, func() {
			if err := c.sess.SetTool(t); err != nil {
				log.Printf("set tool: %v", err)
			}
		}, KeyShortcut{Rune: unicode.ToLower(rune(toolLabels[t][0]))})
		c.button(toolLabels[t], name, t)
	}

	ctrl := key.ModControl
	c.add("undo", c.sess.Undo, KeyShortcut{Rune: 'z', Modifiers: ctrl})
	c.add("redo", c.sess.Redo, KeyShortcut{Rune: 'y', Modifiers: ctrl}, KeyShortcut{Rune: 'z', Modifiers: ctrl | key.ModShift})
	c.add("clear", c.sess.Clear, KeyShortcut{Rune: 'l', Modifiers: ctrl})
	c.add("copy", c.copyMask, KeyShortcut{Rune: 'c', Modifiers: ctrl})
	c.add("save", c.saveMask, KeyShortcut{Rune: 's', Modifiers: ctrl})
	c.add("submit", c.submit, KeyShortcut{Code: key.CodeReturnEnter})
	c.add("cancel", c.cancel, KeyShortcut{Code: key.CodeEscape})
	c.add("quit", func() { c.quit = true }, KeyShortcut{Rune: 'q'})
	c.add("zoomin", c.sess.ZoomIn, KeyShortcut{Rune: '+'}, KeyShortcut{Rune: '='})
	c.add("zoomout", c.sess.ZoomOut, KeyShortcut{Rune: '-'})
	c.add("zoomreset", c.sess.ResetZoom, KeyShortcut{Rune: '0'})

	c.button("Undo", "undo", "")
	c.button("Redo", "redo", "")
	c.button("Clear", "clear", "")
	c.button("Copy", "copy", "")
	c.button("Save", "save", "")
	c.button("Submit", "submit", "")
}

func (c *controller) trigger(name string) {
	if fn, ok := c.actions[name]; ok {
		fn()
	}
}

func (c *controller) say(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	log.Print(text)
	c.msg = message{text: text, until: c.now().Add(messageDuration)}
}

func (c *controller) load(img image.Image) error {
	r := canvasRect(c.width, c.height)
	return c.sess.Load(img, float64(r.Dx()), float64(r.Dy()))
}

func (c *controller) resize(width, height int) {
	c.width, c.height = width, height
	r := canvasRect(width, height)
	c.sess.Resize(float64(r.Dx()), float64(r.Dy()))
}

func (c *controller) snapshot() paintState {
	v := c.sess.Viewport()
	st := paintState{
		width:     c.width,
		height:    c.height,
		composite: c.sess.Composite(),
		scale:     v.Scale(),
		offset:    v.Offset(),
		tool:      c.sess.Tool(),
		canUndo:   c.sess.CanUndo(),
		buttons:   c.buttons,
		hover:     c.hover,
		msg:       c.msg,
	}
	st.step, st.length = c.sess.History()
	if p, ok := c.sess.PendingAnnotation(); ok {
		pos, _ := c.sess.PopupPosition()
		st.popup = &popup{at: image.Pt(int(pos.X), int(pos.Y)), input: p.Input, kind: p.Kind}
	}
	return st
}

// handleMouse reports whether the frame needs repainting.
func (c *controller) handleMouse(e mouse.Event) bool {
	if c.msg.visible(c.now()) && e.Direction == mouse.DirPress {
		c.msg = message{}
		return true
	}
	p := image.Pt(int(e.X), int(e.Y))
	canvas := canvasRect(c.width, c.height)

	if !c.pressed && !p.In(canvas) {
		return c.handleChrome(p, e)
	}
	if c.hover != -1 {
		c.hover = -1
	}

	local := e
	local.X -= float32(canvas.Min.X)
	local.Y -= float32(canvas.Min.Y)
	if c.pressed && !p.In(canvas) && e.Direction != mouse.DirRelease {
		c.pressed = false
		c.sess.PointerLeave(editor.PointerFromMouse(local))
		return true
	}
	switch e.Direction {
	case mouse.DirPress:
		if !e.Button.IsWheel() {
			c.pressed = true
		}
	case mouse.DirRelease:
		c.pressed = false
	}
	return c.sess.HandleMouse(local)
}

func (c *controller) handleChrome(p image.Point, e mouse.Event) bool {
	hover := -1
	for i, b := range c.buttons {
		if p.In(b.Rect()) {
			hover = i
			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
				b.Activate()
				c.hover = hover
				return true
			}
			break
		}
	}
	changed := hover != c.hover
	c.hover = hover
	return changed
}

// handleKey reports whether the frame needs repainting.
func (c *controller) handleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	if p, ok := c.sess.PendingAnnotation(); ok {
		return c.editAnnotation(p.Input, e)
	}
	if name, ok := c.lookup(e); ok {
		c.trigger(name)
		return true
	}
	return false
}

// editAnnotation feeds a key press into the open text input.
func (c *controller) editAnnotation(input string, e key.Event) bool {
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		c.sess.CommitPendingInput()
		return true
	case key.CodeEscape:
		c.sess.CancelAnnotation()
		return true
	case key.CodeDeleteBackspace:
		if input == "" {
			return false
		}
		_, n := utf8.DecodeLastRuneInString(input)
		c.sess.SetAnnotationInput(input[:len(input)-n])
		return true
	}
	if e.Modifiers&(key.ModControl|key.ModMeta) != 0 || e.Rune < 0 || !unicode.IsPrint(e.Rune) {
		return false
	}
	c.sess.SetAnnotationInput(input + string(e.Rune))
	return true
}

// lookup resolves a key press to an action. Control combinations often
// arrive without a printable rune, so letters fall back to the key code.
func (c *controller) lookup(e key.Event) (string, bool) {
	r := e.Rune
	if (r < 0x20 || r == 0x7f) && e.Code >= key.CodeA && e.Code <= key.CodeZ {
		r = 'a' + rune(e.Code-key.CodeA)
	}
	r = unicode.ToLower(r)
	if r > 0 {
		if name, ok := c.keys[KeyShortcut{Rune: r, Modifiers: e.Modifiers}]; ok {
			return name, true
		}
		if !unicode.IsLetter(r) {
			if name, ok := c.keys[KeyShortcut{Rune: r, Modifiers: e.Modifiers &^ key.ModShift}]; ok {
				return name, true
			}
		}
	}
	name, ok := c.keys[KeyShortcut{Code: e.Code, Modifiers: e.Modifiers}]
	return name, ok
}

func (c *controller) saveMask() {
	path := c.app.Output
	if path == "" {
		c.say("no output path set")
		return
	}
	data, err := c.sess.Mask()
	if err != nil {
		c.say("save: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.say("save: %v", err)
		return
	}
	c.say("saved %s", path)
	if c.app.Notifier != nil {
		c.app.Notifier.Save(path)
	}
}

func (c *controller) copyMask() {
	data, err := c.sess.Mask()
	if err != nil {
		c.say("copy: %v", err)
		return
	}
	if err := clipboard.WritePNG(data); err != nil {
		c.say("copy: %v", err)
		return
	}
	c.say("mask copied to clipboard")
	if c.app.Notifier != nil {
		c.app.Notifier.Copy("mask copied to clipboard")
	}
}

func (c *controller) submit() {
	err := c.sess.Submit()
	switch {
	case errors.Is(err, editor.ErrNoChanges):
		c.say("nothing to submit")
		return
	case err != nil:
		c.say("submit: %v", err)
		return
	}
	c.say("mask submitted")
	if c.app.Notifier != nil {
		c.app.Notifier.Submit("mask submitted", c.sess.Composite())
	}
}

// cancel abandons the edit and closes the window.
func (c *controller) cancel() {
	c.sess.Cancel()
	c.quit = true
}
