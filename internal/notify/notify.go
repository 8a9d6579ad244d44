// Package notify turns editor outcomes into desktop notifications.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/maskdraw/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave fires when a mask or annotated image is written to disk.
	EventSave Event = "save"
	// EventCopy fires when a mask is copied to the clipboard.
	EventCopy Event = "copy"
	// EventSubmit fires when a mask is handed to the edit backend.
	EventSubmit Event = "submit"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title   string
	Timeout time.Duration
	Events  map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title:   "maskdraw",
		Timeout: 5 * time.Second,
		Events: map[Event]EventPreference{
			EventSave:   {Template: "Saved %s"},
			EventCopy:   {Template: "Copied %s to clipboard"},
			EventSubmit: {Template: "Submitted %s"},
		},
	}
}

// LoadPreferences reads overrides from MASKDRAW_NOTIFY_* variables.
func LoadPreferences(getenv func(string) string) Preferences {
	if getenv == nil {
		getenv = os.Getenv
	}
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(getenv("MASKDRAW_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	apply("MASKDRAW_NOTIFY_SAVE_TEXT", EventSave)
	apply("MASKDRAW_NOTIFY_COPY_TEXT", EventCopy)
	apply("MASKDRAW_NOTIFY_SUBMIT_TEXT", EventSubmit)
	return prefs
}

// Sender delivers one notification.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// New creates a Notifier that delivers through platform.Notify.
func New(prefs Preferences) *Notifier {
	return NewWithSender(prefs, platform.Notify)
}

// NewWithSender creates a Notifier with a custom delivery function.
func NewWithSender(prefs Preferences, send Sender) *Notifier {
	cloned := Preferences{Title: prefs.Title, Timeout: prefs.Timeout, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), send: send}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Save reports a written file, using it as the icon when it exists.
func (n *Notifier) Save(path string) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := n.options()
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy reports a clipboard write.
func (n *Notifier) Copy(detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "mask"
	}
	n.dispatch(EventCopy, detail, n.options())
}

// Submit reports a submitted mask, previewing it when given.
func (n *Notifier) Submit(detail string, preview image.Image) {
	if !n.enabledFor(EventSubmit) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "mask"
	}
	opts := n.options()
	if preview != nil {
		if path, cleanup, err := createPreview(preview); err != nil {
			log.Printf("notification preview: %v", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventSubmit, detail, opts)
}

func (n *Notifier) options() platform.Options {
	return platform.Options{Timeout: n.prefs.Timeout, Urgency: platform.UrgencyNormal}
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.send == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	body := template
	if strings.Contains(template, "%") {
		body = fmt.Sprintf(template, strings.TrimSpace(detail))
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "maskdraw-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
