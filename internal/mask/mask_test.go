package mask

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"testing"

	"github.com/example/maskdraw/internal/raster"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestExtractRectangle(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(src, image.Rect(10, 10, 50, 50), image.NewUniform(color.RGBA{R: 0xFF, G: 0x40, B: 0x81, A: 0xFF}), image.Point{}, draw.Src)

	m := Extract(src, 0)
	if m.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v", m.Bounds())
	}
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			got := m.RGBAAt(x, y)
			inside := x >= 10 && x < 50 && y >= 10 && y < 50
			want := black
			if inside {
				want = white
			}
			if got != want {
				t.Fatalf("pixel %d,%d = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestExtractThresholdAndGenericImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 8, 6))
	src.SetNRGBA(5, 5, color.NRGBA{A: 0x10})
	src.SetNRGBA(6, 5, color.NRGBA{A: 0x80})
	m := Extract(src, 0x40)
	if m.Bounds() != image.Rect(0, 0, 3, 1) {
		t.Fatalf("bounds = %v", m.Bounds())
	}
	if m.RGBAAt(0, 0) != black || m.RGBAAt(1, 0) != white || m.RGBAAt(2, 0) != black {
		t.Fatalf("unexpected mask row %v %v %v", m.RGBAAt(0, 0), m.RGBAAt(1, 0), m.RGBAAt(2, 0))
	}
}

func TestEncodeProducesPNG(t *testing.T) {
	s := raster.New(64, 32)
	data, err := Encode(s.Image(), 0)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestEmitterDeliversLatest(t *testing.T) {
	var (
		mu  sync.Mutex
		got [][]byte
	)
	e := NewEmitter(func(b []byte) {
		mu.Lock()
		got = append(got, b)
		mu.Unlock()
	})
	t.Cleanup(e.Close)

	s := raster.New(20, 20)
	for i := 0; i < 10; i++ {
		s.StrokeFreehand([]r2.Vec{{X: float64(i), Y: 0}, {X: float64(i), Y: 20}}, raster.Style{Color: color.Black, Width: 1, Scale: 1})
		e.Emit(s.Snapshot())
	}
	e.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(got) == 0 || len(got) > 10 {
		t.Fatalf("delivered %d masks", len(got))
	}
	want, err := Encode(s.Image(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got[len(got)-1], want) {
		t.Fatal("last delivered mask is not the latest state")
	}
}

func TestEmitterCloseIsIdempotent(t *testing.T) {
	e := NewEmitter(func([]byte) {})
	e.Emit(raster.New(4, 4).Snapshot())
	e.Close()
	e.Close()
	e.Emit(raster.New(4, 4).Snapshot())
	e.Flush()
}
