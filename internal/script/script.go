// Package script reads and replays gesture scripts: one session command per
// line, coordinates in screen pixels.
//
//	# draw a box and label it
//	tool comment
//	down 10 10
//	move 80 60
//	up 80 60
//	type first note
package script

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/theme"
	"gonum.org/v1/gonum/spatial/r2"
)

// Op names a script command.
type Op string

const (
	OpTool             Op = "tool"
	OpColor            Op = "color"
	OpDown             Op = "down"
	OpMove             Op = "move"
	OpUp               Op = "up"
	OpLeave            Op = "leave"
	OpWheel            Op = "wheel"
	OpZoom             Op = "zoom"
	OpType             Op = "type"
	OpCancelAnnotation Op = "cancel-annotation"
	OpUndo             Op = "undo"
	OpRedo             Op = "redo"
	OpClear            Op = "clear"
	OpResize           Op = "resize"
)

// Command is one parsed line.
type Command struct {
	Line int
	Op   Op

	Pos     r2.Vec
	Delta   float64
	Tool    editor.Tool
	Color   color.RGBA
	Text    string
	Zoom    string
	Pointer editor.Pointer
}

// Error reports a malformed script line.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Msg) }

// Parse reads every command from r.
func Parse(r io.Reader) ([]Command, error) {
	var cmds []Command
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cmd, err := ParseLine(text)
		if err != nil {
			return nil, &Error{Line: line, Msg: err.Error()}
		}
		cmd.Line = line
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return cmds, nil
}

// ParseLine parses a single command without comments.
func ParseLine(text string) (Command, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)
	cmd := Command{Op: Op(strings.ToLower(verb))}

	switch cmd.Op {
	case OpTool:
		if len(args) != 1 {
			return cmd, fmt.Errorf("tool takes one name")
		}
		t, err := editor.ParseTool(args[0])
		if err != nil {
			return cmd, err
		}
		cmd.Tool = t
	case OpColor:
		c, err := theme.ParseColor(rest)
		if err != nil {
			return cmd, err
		}
		cmd.Color = c
	case OpDown, OpMove, OpUp, OpLeave:
		if len(args) < 2 {
			return cmd, fmt.Errorf("%s takes x y", cmd.Op)
		}
		pos, err := parsePoint(args[0], args[1])
		if err != nil {
			return cmd, err
		}
		cmd.Pos = pos
		cmd.Pointer = editor.Pointer{Pos: pos, Button: editor.ButtonLeft}
		for _, flag := range args[2:] {
			switch strings.ToLower(flag) {
			case "middle":
				cmd.Pointer.Button = editor.ButtonMiddle
			case "right":
				cmd.Pointer.Button = editor.ButtonRight
			case "ctrl":
				cmd.Pointer.Mods |= editor.ModCtrl
			case "meta":
				cmd.Pointer.Mods |= editor.ModMeta
			case "shift":
				cmd.Pointer.Mods |= editor.ModShift
			default:
				return cmd, fmt.Errorf("unknown pointer flag %q", flag)
			}
		}
	case OpWheel:
		if len(args) != 3 {
			return cmd, fmt.Errorf("wheel takes dy x y")
		}
		d, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return cmd, fmt.Errorf("invalid wheel delta %q", args[0])
		}
		pos, err := parsePoint(args[1], args[2])
		if err != nil {
			return cmd, err
		}
		cmd.Delta, cmd.Pos = d, pos
	case OpZoom:
		if len(args) != 1 {
			return cmd, fmt.Errorf("zoom takes in, out or reset")
		}
		switch z := strings.ToLower(args[0]); z {
		case "in", "out", "reset":
			cmd.Zoom = z
		default:
			return cmd, fmt.Errorf("zoom takes in, out or reset, got %q", args[0])
		}
	case OpType:
		cmd.Text = rest
	case OpResize:
		if len(args) != 2 {
			return cmd, fmt.Errorf("resize takes w h")
		}
		size, err := parsePoint(args[0], args[1])
		if err != nil {
			return cmd, err
		}
		if size.X <= 0 || size.Y <= 0 {
			return cmd, fmt.Errorf("resize needs a positive size")
		}
		cmd.Pos = size
	case OpCancelAnnotation, OpUndo, OpRedo, OpClear:
		if len(args) != 0 {
			return cmd, fmt.Errorf("%s takes no arguments", cmd.Op)
		}
	default:
		return cmd, fmt.Errorf("unknown command %q", verb)
	}
	return cmd, nil
}

func parsePoint(xs, ys string) (r2.Vec, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("invalid y %q", ys)
	}
	return r2.Vec{X: x, Y: y}, nil
}

// Apply runs one command against s.
func (c Command) Apply(s *editor.Session) {
	switch c.Op {
	case OpTool:
		_ = s.SetTool(c.Tool)
	case OpColor:
		s.SetColor(c.Color)
	case OpDown:
		s.PointerDown(c.Pointer)
	case OpMove:
		s.PointerMove(c.Pointer)
	case OpUp:
		s.PointerUp(c.Pointer)
	case OpLeave:
		s.PointerLeave(c.Pointer)
	case OpWheel:
		s.Wheel(c.Delta, c.Pos)
	case OpZoom:
		switch c.Zoom {
		case "in":
			s.ZoomIn()
		case "out":
			s.ZoomOut()
		case "reset":
			s.ResetZoom()
		}
	case OpType:
		s.CommitAnnotation(c.Text)
	case OpCancelAnnotation:
		s.CancelAnnotation()
	case OpUndo:
		s.Undo()
	case OpRedo:
		s.Redo()
	case OpClear:
		s.Clear()
	case OpResize:
		s.Resize(c.Pos.X, c.Pos.Y)
	}
}

// Apply runs every command in order.
func Apply(s *editor.Session, cmds []Command) {
	for _, c := range cmds {
		c.Apply(s)
	}
}
