package appstate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/render"
	"github.com/example/maskdraw/internal/theme"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
)

const (
	toolbarHeight = 28
	bottomHeight  = 24
	buttonPad     = 6
	checkerSize   = 8
	popupWidth    = 260
	popupHeight   = 44
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState, th *theme.Theme)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Label() string
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
	theme *theme.Theme
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState, th *theme.Theme) {
	if cb.theme != th {
		cb.cache = [3]*image.RGBA{}
		cb.theme = th
	}
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state, th)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

// labelButton is a flat button with a text label. Tool buttons and action
// buttons differ only in what Activate does.
type labelButton struct {
	label    string
	tool     editor.Tool
	action   string
	rect     image.Rectangle
	onSelect func()
}

func (b *labelButton) Draw(dst *image.RGBA, state ButtonState, th *theme.Theme) {
	c := th.ButtonBackground
	switch state {
	case StateHover:
		c = th.ButtonBackgroundHover
	case StatePressed:
		c = th.ButtonActive
	}
	draw.Draw(dst, b.rect, &image.Uniform{c}, image.Point{}, draw.Src)
	strokeRect(dst, b.rect, th.ButtonBorder)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(b.rect.Min.X+buttonPad, b.rect.Min.Y+(b.rect.Dy()+10)/2)}
	d.DrawString(b.label)
}

func (b *labelButton) Rect() image.Rectangle     { return b.rect }
func (b *labelButton) SetRect(r image.Rectangle) { b.rect = r }
func (b *labelButton) Label() string             { return b.label }

func (b *labelButton) Activate() {
	if b.onSelect != nil {
		b.onSelect()
	}
}

func labelWidth(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil() + 2*buttonPad
}

// layoutToolbar places buttons left to right along the top bar.
func layoutToolbar(buttons []*CacheButton) {
	x := 2
	for _, b := range buttons {
		w := labelWidth(b.Label())
		b.SetRect(image.Rect(x, 2, x+w, toolbarHeight-2))
		x += w + 2
	}
}

// canvasRect is the part of the window the viewport maps onto.
func canvasRect(width, height int) image.Rectangle {
	r := image.Rect(0, toolbarHeight, width, height-bottomHeight)
	if r.Dy() < 1 {
		r.Max.Y = r.Min.Y + 1
	}
	if r.Dx() < 1 {
		r.Max.X = r.Min.X + 1
	}
	return r
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// backdrop caches the checkerboard for one window size and theme.
type backdrop struct {
	img   *image.RGBA
	theme *theme.Theme
}

func (b *backdrop) draw(dst *image.RGBA, th *theme.Theme) {
	r := dst.Bounds()
	if b.img == nil || b.img.Bounds() != r || b.theme != th {
		b.img = image.NewRGBA(r)
		drawCheckerboard(b.img, r, checkerSize, th.CheckerLight, th.CheckerDark)
		b.theme = th
	}
	draw.Draw(dst, r, b.img, r.Min, draw.Src)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	u := &image.Uniform{c}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Over)
}

func drawLabel(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13, Dot: fixed.P(x, y)}
	d.DrawString(s)
}

// statusLine summarises the session for the bottom bar.
func statusLine(st paintState) string {
	if st.popup != nil {
		return "Enter:add  Esc:cancel  Backspace:delete"
	}
	undo := "-"
	if st.canUndo {
		undo = "^Z"
	}
	return fmt.Sprintf("%s  zoom %.0f%%  step %d/%d  undo %s  +/-/0:zoom  ^S:save  ^C:copy  Enter:submit  Q:quit",
		st.tool, st.scale*100, st.step, st.length, undo)
}

// popup is the text input shown while an annotation awaits text.
type popup struct {
	at    image.Point
	input string
	kind  editor.AnnotationKind
}

func (p *popup) rect(canvas image.Rectangle) image.Rectangle {
	r := image.Rect(0, 0, popupWidth, popupHeight).Add(canvas.Min).Add(p.at)
	// keep the popup on screen
	if r.Max.X > canvas.Max.X {
		r = r.Sub(image.Pt(r.Max.X-canvas.Max.X, 0))
	}
	if r.Max.Y > canvas.Max.Y {
		r = r.Sub(image.Pt(0, r.Max.Y-canvas.Max.Y))
	}
	if r.Min.X < canvas.Min.X {
		r = r.Add(image.Pt(canvas.Min.X-r.Min.X, 0))
	}
	if r.Min.Y < canvas.Min.Y {
		r = r.Add(image.Pt(0, canvas.Min.Y-r.Min.Y))
	}
	return r
}

func (p *popup) draw(dst *image.RGBA, canvas image.Rectangle, th *theme.Theme) {
	r := p.rect(canvas)
	render.DropShadow(dst, r, render.DefaultShadowOptions())
	draw.Draw(dst, r, &image.Uniform{th.PopupBackground}, image.Point{}, draw.Over)
	strokeRect(dst, r, th.PopupBorder)
	title := "Text"
	if p.kind == editor.AnnotationComment {
		title = "Comment"
	}
	drawLabel(dst, r.Min.X+6, r.Min.Y+15, title, th.PopupText)
	drawLabel(dst, r.Min.X+6, r.Min.Y+34, p.input+"|", th.PopupText)
}

// message is a transient banner in the middle of the canvas.
type message struct {
	text  string
	until time.Time
}

func (m message) visible(now time.Time) bool { return m.text != "" && now.Before(m.until) }

func (m message) draw(dst *image.RGBA, canvas image.Rectangle, th *theme.Theme) {
	w := labelWidth(m.text)
	c := image.Pt((canvas.Min.X+canvas.Max.X)/2, (canvas.Min.Y+canvas.Max.Y)/2)
	r := image.Rect(c.X-w/2-8, c.Y-14, c.X+w/2+8, c.Y+14)
	render.DropShadow(dst, r, render.DefaultShadowOptions())
	draw.Draw(dst, r, &image.Uniform{th.PopupBackground}, image.Point{}, draw.Over)
	strokeRect(dst, r, th.PopupBorder)
	drawLabel(dst, r.Min.X+8+buttonPad, c.Y+4, m.text, th.PopupText)
}
