//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce sync.Once
	initErr  error
	owner    *x11Owner
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		o, err := newX11Owner()
		if err != nil {
			initErr = fmt.Errorf("x11 clipboard: %w", err)
			return
		}
		owner = o
	})
	return initErr
}

func writePNG(data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.publish(data)
}

func readPNG() ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return owner.fetch()
}

// x11Owner holds the CLIPBOARD selection on a hidden window and answers
// requests for image/png from other clients.
type x11Owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  x11Atoms

	mu   sync.RWMutex
	data []byte
}

type x11Atoms struct {
	clipboard, targets, png, property xproto.Atom
}

func newX11Owner() (*x11Owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		conn.Close()
		return nil, err
	}
	atoms, err := internX11Atoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	o := &x11Owner{conn: conn, window: window, atoms: atoms}
	go o.serve()
	return o, nil
}

func internX11Atoms(conn *xgb.Conn) (x11Atoms, error) {
	var a x11Atoms
	for _, want := range []struct {
		name string
		dst  *xproto.Atom
	}{
		{"CLIPBOARD", &a.clipboard},
		{"TARGETS", &a.targets},
		{"image/png", &a.png},
		{"MASKDRAW_CLIPBOARD", &a.property},
	} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(want.name)), want.name).Reply()
		if err != nil {
			return a, fmt.Errorf("intern %s: %w", want.name, err)
		}
		*want.dst = reply.Atom
	}
	return a, nil
}

func (o *x11Owner) publish(data []byte) error {
	o.mu.Lock()
	o.data = append([]byte(nil), data...)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *x11Owner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.data = nil
			o.mu.Unlock()
		}
	}
}

func (o *x11Owner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	o.mu.RLock()
	data := o.data
	o.mu.RUnlock()

	switch {
	case e.Target == o.atoms.targets:
		targets := []xproto.Atom{o.atoms.targets}
		if len(data) > 0 {
			targets = append(targets, o.atoms.png)
		}
		buf := make([]byte, 4*len(targets))
		for i, t := range targets {
			xgb.Put32(buf[4*i:], uint32(t))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(targets)), buf)
	case e.Target == o.atoms.png && len(data) > 0:
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, o.atoms.png, 8, uint32(len(data)), data)
	default:
		property = xproto.AtomNone
	}

	ev := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(o.conn, false, e.Requestor, 0, string(ev.Bytes()))
}

// fetch asks the current selection owner for image/png on a separate
// connection so it does not race the serving loop.
func (o *x11Owner) fetch() ([]byte, error) {
	o.mu.RLock()
	own := append([]byte(nil), o.data...)
	o.mu.RUnlock()
	if len(own) > 0 {
		return own, nil
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	err = xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check()
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, o.atoms.clipboard, o.atoms.png, o.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, ErrNoImage
		}
		reply, rerr := xproto.GetProperty(conn, true, window, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if rerr != nil {
			return nil, rerr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}
