package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/example/maskdraw/internal/editor"
	"github.com/google/uuid"
)

func photoPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	cfg.Quiet = true
	s := New(cfg)
	t.Cleanup(func() { s.Registry().Close() })
	return s
}

func do(t *testing.T, s *Server, method, target string, body []byte) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func decodeState(t *testing.T, resp *http.Response) State {
	t.Helper()
	defer resp.Body.Close()
	var st State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	return st
}

func createSession(t *testing.T, s *Server) State {
	t.Helper()
	resp := do(t, s, http.MethodPost, "/sessions?w=100&h=100&tool=rect", photoPNG(t, 100, 100))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	return decodeState(t, resp)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	resp := do(t, s, http.MethodGet, "/health/live", nil)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "alive") {
		t.Fatalf("health = %d %s", resp.StatusCode, body)
	}
}

func TestSessionLifecycle(t *testing.T) {
	var submitted []byte
	s := newTestServer(t, Config{OnSubmit: func(_ string, m []byte) { submitted = m }})

	st := createSession(t, s)
	if _, err := uuid.Parse(st.ID); err != nil {
		t.Fatalf("id %q is not a uuid", st.ID)
	}
	if st.Width != 100 || st.Height != 100 || st.Tool != "rectangle" || st.HistoryLen != 1 {
		t.Fatalf("initial state = %+v", st)
	}

	resp := do(t, s, http.MethodPost, "/sessions/"+st.ID+"/submit", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("submit without changes = %d", resp.StatusCode)
	}

	events := `[
		{"type":"down","x":10,"y":10},
		{"type":"move","x":60,"y":60},
		{"type":"up","x":60,"y":60}
	]`
	resp = do(t, s, http.MethodPost, "/sessions/"+st.ID+"/events", []byte(events))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events status %d", resp.StatusCode)
	}
	st = decodeState(t, resp)
	if st.HistoryStep != 1 || st.HistoryLen != 2 || !st.HasChanges || !st.CanUndo {
		t.Fatalf("after drag = %+v", st)
	}

	resp = do(t, s, http.MethodGet, "/sessions/"+st.ID+"/mask", nil)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("mask content type %q", ct)
	}
	m, err := png.Decode(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	white := 0
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(m.At(x, y)).(color.Gray).Y == 0xFF {
				white++
			}
		}
	}
	if white == 0 {
		t.Fatal("mask has no strokes")
	}

	resp = do(t, s, http.MethodPost, "/sessions/"+st.ID+"/submit", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status %d", resp.StatusCode)
	}
	resp.Body.Close()
	if len(submitted) == 0 || !bytes.HasPrefix(submitted, []byte("\x89PNG")) {
		t.Fatal("submit hook did not receive a PNG")
	}

	resp = do(t, s, http.MethodDelete, "/sessions/"+st.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp = do(t, s, http.MethodGet, "/sessions/"+st.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete = %d", resp.StatusCode)
	}
}

func TestCommentAnnotationOverHTTP(t *testing.T) {
	s := newTestServer(t, Config{})
	st := createSession(t, s)

	events := `[
		{"type":"tool","tool":"comment"},
		{"type":"down","x":20,"y":20},
		{"type":"move","x":70,"y":50},
		{"type":"up","x":70,"y":50}
	]`
	st = decodeState(t, do(t, s, http.MethodPost, "/sessions/"+st.ID+"/events", []byte(events)))
	if st.Phase != "awaitingText" || st.Pending == nil || st.Pending.Kind != "comment" {
		t.Fatalf("expected open comment, got %+v", st)
	}
	if st.HistoryLen != 1 {
		t.Fatalf("comment committed before text: %+v", st)
	}

	st = decodeState(t, do(t, s, http.MethodPost, "/sessions/"+st.ID+"/events", []byte(`[{"type":"type","text":"look here"}]`)))
	if st.Pending != nil || st.HistoryLen != 2 || st.Phase != "idle" {
		t.Fatalf("after text = %+v", st)
	}
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, Config{})
	st := createSession(t, s)

	tests := []struct {
		name   string
		method string
		target string
		body   []byte
		status int
	}{
		{"empty body", http.MethodPost, "/sessions", nil, http.StatusBadRequest},
		{"not an image", http.MethodPost, "/sessions", []byte("hello"), http.StatusBadRequest},
		{"bad size", http.MethodPost, "/sessions?w=-3", photoPNG(t, 4, 4), http.StatusBadRequest},
		{"bad tool", http.MethodPost, "/sessions?tool=lasso", photoPNG(t, 4, 4), http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/sessions/" + uuid.NewString() + "/mask", nil, http.StatusNotFound},
		{"junk id", http.MethodGet, "/sessions/zzz", nil, http.StatusNotFound},
		{"bad json", http.MethodPost, "/sessions/" + st.ID + "/events", []byte("{"), http.StatusBadRequest},
		{"bad event", http.MethodPost, "/sessions/" + st.ID + "/events", []byte(`[{"type":"down","x":1,"y":1},{"type":"fly"}]`), http.StatusBadRequest},
		{"bad button", http.MethodPost, "/sessions/" + st.ID + "/events", []byte(`[{"type":"down","button":"fourth"}]`), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, s, tt.method, tt.target, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}

	// the rejected batch must not have run its first event
	got := decodeState(t, do(t, s, http.MethodGet, "/sessions/"+st.ID, nil))
	if got.Phase != "idle" || got.HistoryLen != 1 {
		t.Fatalf("partial batch applied: %+v", got)
	}
}

func TestSessionLimit(t *testing.T) {
	s := newTestServer(t, Config{MaxSessions: 1})
	createSession(t, s)
	resp := do(t, s, http.MethodPost, "/sessions", photoPNG(t, 10, 10))
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", resp.StatusCode)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry(0)
	t.Cleanup(r.Close)
	e, err := r.Create(image.NewRGBA(image.Rect(0, 0, 20, 20)), 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	cmds, err := Commands([]Event{{Type: "zoom", Zoom: "in"}, {Type: "zoom", Zoom: "out"}})
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Get(e.id)
			if err != nil {
				t.Error(err)
				return
			}
			for _, c := range cmds {
				cmd := c
				got.with(func(sess *editor.Session) error {
					cmd.Apply(sess)
					return nil
				})
			}
		}()
	}
	wg.Wait()

	if err := r.Delete(e.id); err != nil {
		t.Fatal(err)
	}
	if err := r.Delete(e.id); err != ErrSessionNotFound {
		t.Fatalf("second delete = %v", err)
	}
}

func TestEventCommand(t *testing.T) {
	c, err := Event{Type: "down", X: 5, Y: 6.5, Button: "middle", Ctrl: true}.Command()
	if err != nil {
		t.Fatal(err)
	}
	if c.Pos.X != 5 || c.Pos.Y != 6.5 || c.Pointer.Mods == 0 {
		t.Fatalf("command = %+v", c)
	}
	if _, err := (Event{Type: "type", Text: "a\nb"}).Command(); err == nil {
		t.Fatal("multi-line text accepted")
	}
}
