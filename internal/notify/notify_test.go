package notify

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/maskdraw/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func recorder(out *[]sent) Sender {
	return func(title, body string, opts platform.Options) error {
		_, err := os.Stat(opts.IconPath)
		*out = append(*out, sent{title, body, opts, opts.IconPath != "" && err == nil})
		return nil
	}
}

func TestDisabledEventsAreSilent(t *testing.T) {
	var got []sent
	n := NewWithSender(DefaultPreferences(), recorder(&got))
	n.Save("x.png")
	n.Copy("")
	n.Submit("", nil)
	if len(got) != 0 {
		t.Fatalf("sent %d notifications", len(got))
	}
}

func TestSaveUsesAbsolutePathAndIcon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mask.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got []sent
	n := NewWithSender(DefaultPreferences(), recorder(&got))
	n.Enable(EventSave, true)
	n.Save(path)
	if len(got) != 1 {
		t.Fatalf("sent %d", len(got))
	}
	if got[0].body != "Saved "+path || got[0].opts.IconPath != path {
		t.Errorf("notification = %+v", got[0])
	}
	if got[0].title != "maskdraw" {
		t.Errorf("title = %q", got[0].title)
	}
}

func TestSubmitPreviewIsTemporary(t *testing.T) {
	var got []sent
	n := NewWithSender(DefaultPreferences(), recorder(&got))
	n.Enable(EventSubmit, true)
	n.Submit("", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(got) != 1 || got[0].body != "Submitted mask" {
		t.Fatalf("notifications = %+v", got)
	}
	if !got[0].iconExisted {
		t.Error("preview missing during send")
	}
	if _, err := os.Stat(got[0].opts.IconPath); !os.IsNotExist(err) {
		t.Error("preview not cleaned up")
	}
}

func TestLoadPreferences(t *testing.T) {
	env := map[string]string{
		"MASKDRAW_NOTIFY_TITLE":     "Retouch",
		"MASKDRAW_NOTIFY_COPY_TEXT": "Mask ready",
	}
	prefs := LoadPreferences(func(k string) string { return env[k] })
	var got []sent
	n := NewWithSender(prefs, recorder(&got))
	n.Enable(EventCopy, true)
	n.Copy("ignored")
	if len(got) != 1 || got[0].title != "Retouch" || got[0].body != "Mask ready" {
		t.Fatalf("notifications = %+v", got)
	}
}

func TestSendErrorsAreLogged(t *testing.T) {
	n := NewWithSender(DefaultPreferences(), func(string, string, platform.Options) error {
		return errors.New("no bus")
	})
	n.Enable(EventCopy, true)
	n.Copy("mask")
}
