package viewport

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

const tol = 1e-9

func vecNear(a, b r2.Vec) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) && scalar.EqualWithinAbs(a.Y, b.Y, tol)
}

func TestRoundTrip(t *testing.T) {
	scales := []float64{0.1, 0.37, 1, 2.5, 5}
	offsets := []r2.Vec{{}, {X: 12.5, Y: -40}, {X: -1000.25, Y: 333.3}}
	points := []r2.Vec{{}, {X: 1, Y: 1}, {X: 640.5, Y: 480.25}, {X: -17, Y: 9999}}
	for _, s := range scales {
		for _, o := range offsets {
			v := New()
			v.Set(s, o)
			for _, p := range points {
				got := v.ToScreen(v.ToImage(p))
				if !vecNear(got, p) {
					t.Errorf("scale %v offset %v: round trip %v -> %v", s, o, p, got)
				}
			}
		}
	}
}

func TestFitToScreenWideImage(t *testing.T) {
	v := New()
	v.FitToScreen(2000, 500, 800, 600)
	want := 800 * FitMargin / 2000
	if !scalar.EqualWithinAbs(v.Scale(), want, tol) {
		t.Fatalf("scale = %v, want %v", v.Scale(), want)
	}
	off := v.Offset()
	if !scalar.EqualWithinAbs(off.X, (800-2000*want)/2, tol) {
		t.Errorf("offset x = %v", off.X)
	}
	top := off.Y
	bottom := 600 - (off.Y + 500*want)
	if !scalar.EqualWithinAbs(top, bottom, tol) {
		t.Errorf("not vertically centred: top %v bottom %v", top, bottom)
	}
	if 2000*v.Scale() > 800*FitMargin+tol {
		t.Errorf("image wider than %v of container", FitMargin)
	}
}

func TestFitToScreenTallImage(t *testing.T) {
	v := New()
	v.FitToScreen(300, 900, 800, 600)
	want := 600 * FitMargin / 900
	if !scalar.EqualWithinAbs(v.Scale(), want, tol) {
		t.Fatalf("scale = %v, want %v", v.Scale(), want)
	}
	off := v.Offset()
	left := off.X
	right := 800 - (off.X + 300*want)
	if !scalar.EqualWithinAbs(left, right, tol) {
		t.Errorf("not horizontally centred: left %v right %v", left, right)
	}
}

func TestFitToScreenIgnoresDegenerateSizes(t *testing.T) {
	v := New()
	v.Set(2, r2.Vec{X: 5, Y: 5})
	v.FitToScreen(0, 100, 800, 600)
	v.FitToScreen(100, 100, 800, -1)
	if v.Scale() != 2 || v.Offset() != (r2.Vec{X: 5, Y: 5}) {
		t.Fatalf("degenerate fit mutated viewport: %v %v", v.Scale(), v.Offset())
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	v := New()
	v.Set(1.3, r2.Vec{X: 40, Y: 20})
	anchor := r2.Vec{X: 310, Y: 155}
	before := v.ToImage(anchor)
	v.ZoomAt(3.1, anchor)
	if !vecNear(v.ToImage(anchor), before) {
		t.Fatalf("anchor drifted: %v -> %v", before, v.ToImage(anchor))
	}
}

func TestZoomClamps(t *testing.T) {
	v := New()
	v.ZoomAt(100, r2.Vec{})
	if v.Scale() != MaxScale {
		t.Errorf("scale = %v, want %v", v.Scale(), MaxScale)
	}
	v.ZoomAt(-3, r2.Vec{})
	if v.Scale() != MinScale {
		t.Errorf("scale = %v, want %v", v.Scale(), MinScale)
	}
}

func TestWheelOppositeDeltasCancel(t *testing.T) {
	v := New()
	v.Set(1.2, r2.Vec{X: -30, Y: 75})
	anchor := r2.Vec{X: 400, Y: 300}
	scale, off := v.Scale(), v.Offset()
	v.Wheel(-120, anchor)
	if scalar.EqualWithinAbs(v.Scale(), scale, tol) {
		t.Fatalf("wheel did not zoom")
	}
	v.Wheel(120, anchor)
	if !scalar.EqualWithinAbs(v.Scale(), scale, tol) {
		t.Errorf("scale = %v, want %v", v.Scale(), scale)
	}
	if !vecNear(v.Offset(), off) {
		t.Errorf("offset = %v, want %v", v.Offset(), off)
	}
}

func TestZoomButtonsUseContainerCentre(t *testing.T) {
	v := New()
	v.FitToScreen(1000, 1000, 800, 600)
	centre := r2.Vec{X: 400, Y: 300}
	before := v.ToImage(centre)
	v.ZoomIn()
	if !vecNear(v.ToImage(centre), before) {
		t.Errorf("zoom in moved centre")
	}
	v.ZoomOut()
	v.ZoomOut()
	if v.Scale() != MinScale {
		t.Errorf("scale = %v, want clamp to %v", v.Scale(), MinScale)
	}
}

func TestPanAndReset(t *testing.T) {
	v := New()
	v.FitToScreen(400, 300, 800, 600)
	fitScale, fitOffset := v.Scale(), v.Offset()
	v.Pan(r2.Vec{X: 15, Y: -7})
	if !vecNear(v.Offset(), r2.Add(fitOffset, r2.Vec{X: 15, Y: -7})) {
		t.Fatalf("pan offset = %v", v.Offset())
	}
	v.ZoomIn()
	v.Reset()
	if v.Scale() != fitScale || !vecNear(v.Offset(), fitOffset) {
		t.Fatalf("reset = %v %v, want %v %v", v.Scale(), v.Offset(), fitScale, fitOffset)
	}
}
