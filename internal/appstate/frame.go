package appstate

import (
	"context"
	"image"
	"image/draw"
	"log"
	"math"
	"time"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/theme"
	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/spatial/r2"
)

// paintState is everything a frame needs, captured on the event goroutine so
// the paint goroutine never touches the session.
type paintState struct {
	width, height int
	composite     *image.RGBA
	scale         float64
	offset        r2.Vec
	tool          editor.Tool
	step, length  int
	canUndo       bool
	buttons       []*CacheButton
	hover         int
	popup         *popup
	msg           message
}

// imageRect is where the composite lands in window coordinates.
func imageRect(st paintState, canvas image.Rectangle) image.Rectangle {
	b := st.composite.Bounds()
	x0 := float64(canvas.Min.X) + st.offset.X
	y0 := float64(canvas.Min.Y) + st.offset.Y
	return image.Rect(
		int(math.Round(x0)),
		int(math.Round(y0)),
		int(math.Round(x0+float64(b.Dx())*st.scale)),
		int(math.Round(y0+float64(b.Dy())*st.scale)),
	)
}

func paintFrame(ctx context.Context, dst *image.RGBA, st paintState, th *theme.Theme, bd *backdrop) {
	canvas := canvasRect(st.width, st.height)
	bd.draw(dst, th)
	if ctx.Err() != nil {
		return
	}

	if st.composite != nil {
		view := dst.SubImage(canvas).(*image.RGBA)
		var scaler xdraw.Scaler = xdraw.NearestNeighbor
		if st.scale < 1 {
			scaler = xdraw.ApproxBiLinear
		}
		scaler.Scale(view, imageRect(st, canvas), st.composite, st.composite.Bounds(), draw.Over, nil)
	}
	if ctx.Err() != nil {
		return
	}

	bar := &image.Uniform{th.ToolbarBackground}
	draw.Draw(dst, image.Rect(0, 0, st.width, toolbarHeight), bar, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, st.height-bottomHeight, st.width, st.height), bar, image.Point{}, draw.Src)
	for i, b := range st.buttons {
		state := StateDefault
		if lb, ok := b.Button.(*labelButton); ok && lb.tool != "" && lb.tool == st.tool {
			state = StatePressed
		} else if i == st.hover {
			state = StateHover
		}
		b.Draw(dst, state, th)
	}
	drawLabel(dst, 6, st.height-bottomHeight+16, statusLine(st), th.Foreground)
	if ctx.Err() != nil {
		return
	}

	if st.popup != nil {
		st.popup.draw(dst, canvas, th)
	}
	if st.msg.visible(time.Now()) {
		st.msg.draw(dst, canvas, th)
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState, th *theme.Theme, bd *backdrop) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	paintFrame(ctx, b.RGBA(), st, th, bd)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
