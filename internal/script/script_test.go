package script

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/example/maskdraw/internal/editor"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestParse(t *testing.T) {
	src := `
# header comment
tool rect
color #00ff00
down 10 20
move 30.5 40
up 30.5 40
down 5 5 middle ctrl
wheel -120 50 60
zoom reset
type  hello world
cancel-annotation
undo
redo
clear
resize 800 600
`
	cmds, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 14 {
		t.Fatalf("parsed %d commands", len(cmds))
	}
	if cmds[0].Op != OpTool || cmds[0].Tool != editor.ToolRectangle || cmds[0].Line != 3 {
		t.Errorf("tool = %+v", cmds[0])
	}
	if cmds[1].Color != (color.RGBA{G: 0xFF, A: 0xFF}) {
		t.Errorf("color = %v", cmds[1].Color)
	}
	if cmds[3].Pos != (r2.Vec{X: 30.5, Y: 40}) {
		t.Errorf("move pos = %v", cmds[3].Pos)
	}
	p := cmds[5].Pointer
	if p.Button != editor.ButtonMiddle || p.Mods != editor.ModCtrl {
		t.Errorf("pointer flags = %+v", p)
	}
	if cmds[6].Delta != -120 || cmds[6].Pos != (r2.Vec{X: 50, Y: 60}) {
		t.Errorf("wheel = %+v", cmds[6])
	}
	if cmds[8].Text != "hello world" {
		t.Errorf("type text = %q", cmds[8].Text)
	}
	if cmds[13].Pos != (r2.Vec{X: 800, Y: 600}) {
		t.Errorf("resize = %v", cmds[13].Pos)
	}
}

func TestParseErrorsCarryLineNumbers(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{"tool brush\nlasso 1 2\n", 2},
		{"\n\ndown 1\n", 3},
		{"tool spray\n", 1},
		{"undo\nzoom sideways\n", 2},
		{"wheel x 1 2\n", 1},
		{"down 1 2 left-ish\n", 1},
		{"up 3 4 touch\n", 1},
		{"resize 0 10\n", 1},
		{"color\n", 1},
	}
	for _, tt := range tests {
		_, err := Parse(strings.NewReader(tt.src))
		var se *Error
		if !errors.As(err, &se) {
			t.Errorf("%q: err = %v", tt.src, err)
			continue
		}
		if se.Line != tt.line {
			t.Errorf("%q: line %d, want %d", tt.src, se.Line, tt.line)
		}
	}
}

func TestApplyDrawsAndCommits(t *testing.T) {
	s := editor.New()
	t.Cleanup(s.Close)
	if err := s.Load(image.NewRGBA(image.Rect(0, 0, 100, 100)), 100, 100); err != nil {
		t.Fatal(err)
	}
	s.Viewport().Set(1, r2.Vec{})

	cmds, err := Parse(strings.NewReader(`
tool comment
down 10 10
move 60 40
up 60 40
type a note
tool brush
down 10 80
move 90 80
leave 95 80
undo
`))
	if err != nil {
		t.Fatal(err)
	}
	Apply(s, cmds)

	if step, n := s.History(); step != 1 || n != 3 {
		t.Fatalf("history step %d len %d, want 1 3", step, n)
	}
	if s.Surface().Image().RGBAAt(50, 80).A != 0 {
		t.Error("undone brush stroke still visible")
	}
	if s.Surface().Image().RGBAAt(15, 10).A == 0 {
		t.Error("comment box missing")
	}
}
