package appstate

import (
	"context"
	"image"
	"log"
	"sync"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/notify"
	"github.com/example/maskdraw/internal/theme"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// Window size limits used when picking the initial size from the photo.
const (
	maxWindowWidth  = 1280
	maxWindowHeight = 860
	minWindowWidth  = 640
	minWindowHeight = 360
)

// AppState holds application configuration for the UI.
type AppState struct {
	Image    image.Image
	Output   string
	Session  *editor.Session
	Theme    *theme.Theme
	Notifier *notify.Notifier

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithImage sets the photo to annotate.
func WithImage(img image.Image) Option { return func(a *AppState) { a.Image = img } }

// WithOutput sets the path the mask is saved to.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithSession uses s instead of a default session. The window loads the
// image into it.
func WithSession(s *editor.Session) Option { return func(a *AppState) { a.Session = s } }

// WithTheme sets the window colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithNotifier sends desktop notifications for save, copy and submit.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	if a.Session == nil {
		a.Session = editor.New()
	}
	return a
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// initialSize fits the photo plus the bars within the window limits.
func initialSize(b image.Rectangle) (int, int) {
	w := min(max(b.Dx(), minWindowWidth), maxWindowWidth)
	h := min(max(b.Dy()+toolbarHeight+bottomHeight, minWindowHeight), maxWindowHeight)
	return w, h
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	if a.Image == nil {
		log.Print("appstate: no image to annotate")
		return
	}
	width, height := initialSize(a.Image.Bounds())
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "maskdraw"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	c := newController(a, width, height)
	if err := c.load(a.Image); err != nil {
		log.Printf("load image: %v", err)
		return
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	bd := &backdrop{}
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st, a.Theme, bd)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	stop := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stop()
				return
			}
		case size.Event:
			c.resize(e.WidthPx, e.HeightPx)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := c.snapshot()
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if c.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if c.handleKey(e) {
				w.Send(paint.Event{})
			}
		}
		if c.quit {
			stop()
			return
		}
	}
}
