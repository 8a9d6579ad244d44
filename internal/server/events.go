package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/script"
)

// Event is one input event posted by a client. Coordinates are screen
// pixels relative to the container the session was created with.
type Event struct {
	Type   string  `json:"type"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`
	Tool   string  `json:"tool,omitempty"`
	Color  string  `json:"color,omitempty"`
	Text   string  `json:"text,omitempty"`
	Zoom   string  `json:"zoom,omitempty"`
	Button string  `json:"button,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Meta   bool    `json:"meta,omitempty"`
	Shift  bool    `json:"shift,omitempty"`
}

// Command converts the event to a script command so HTTP clients and
// replay files share one parser.
func (e Event) Command() (script.Command, error) {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	op := script.Op(strings.ToLower(e.Type))
	parts := []string{string(op)}
	switch op {
	case script.OpDown, script.OpMove, script.OpUp, script.OpLeave:
		parts = append(parts, f(e.X), f(e.Y))
		switch strings.ToLower(e.Button) {
		case "", "left":
		case "middle", "right":
			parts = append(parts, strings.ToLower(e.Button))
		default:
			return script.Command{}, fmt.Errorf("unknown button %q", e.Button)
		}
		flags := []struct {
			name string
			on   bool
		}{{"ctrl", e.Ctrl}, {"meta", e.Meta}, {"shift", e.Shift}}
		for _, fl := range flags {
			if fl.on {
				parts = append(parts, fl.name)
			}
		}
	case script.OpWheel:
		parts = append(parts, f(e.DY), f(e.X), f(e.Y))
	case script.OpResize:
		parts = append(parts, f(e.W), f(e.H))
	case script.OpTool:
		parts = append(parts, e.Tool)
	case script.OpColor:
		parts = append(parts, e.Color)
	case script.OpZoom:
		parts = append(parts, e.Zoom)
	case script.OpType:
		if strings.ContainsAny(e.Text, "\r\n") {
			return script.Command{}, fmt.Errorf("text must be a single line")
		}
		parts = append(parts, e.Text)
	}
	return script.ParseLine(strings.Join(parts, " "))
}

// Commands converts a batch, reporting the index of the first bad event.
func Commands(events []Event) ([]script.Command, error) {
	cmds := make([]script.Command, 0, len(events))
	for i, ev := range events {
		c, err := ev.Command()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

// Offset is a viewport translation in screen pixels.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pending describes an open annotation.
type Pending struct {
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Input  string  `json:"input"`
	PopupX float64 `json:"popupX"`
	PopupY float64 `json:"popupY"`
}

// State is the session snapshot returned after every request.
type State struct {
	ID          string   `json:"id"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Tool        string   `json:"tool"`
	Color       string   `json:"color"`
	Phase       string   `json:"phase"`
	Scale       float64  `json:"scale"`
	Offset      Offset   `json:"offset"`
	HistoryStep int      `json:"historyStep"`
	HistoryLen  int      `json:"historyLen"`
	HasChanges  bool     `json:"hasChanges"`
	CanUndo     bool     `json:"canUndo"`
	CanRedo     bool     `json:"canRedo"`
	Pending     *Pending `json:"pending,omitempty"`
}

func stateOf(id string, s *editor.Session) State {
	b := s.Surface().Bounds()
	c := s.Color()
	off := s.Viewport().Offset()
	st := State{
		ID:         id,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Tool:       s.Tool().String(),
		Color:      fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		Phase:      s.Phase().String(),
		Scale:      s.Viewport().Scale(),
		Offset:     Offset{X: off.X, Y: off.Y},
		HasChanges: s.HasChanges(),
		CanUndo:    s.CanUndo(),
		CanRedo:    s.CanRedo(),
	}
	st.HistoryStep, st.HistoryLen = s.History()
	if p, ok := s.PendingAnnotation(); ok {
		popup, _ := s.PopupPosition()
		st.Pending = &Pending{
			Kind:   p.Kind.String(),
			X:      p.Anchor.X,
			Y:      p.Anchor.Y,
			W:      p.Size.X,
			H:      p.Size.Y,
			Input:  p.Input,
			PopupX: popup.X,
			PopupY: popup.Y,
		}
	}
	return st
}
