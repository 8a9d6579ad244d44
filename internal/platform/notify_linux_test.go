//go:build linux

package platform

import (
	"testing"
	"time"
)

func TestHints(t *testing.T) {
	h := hints(Options{IconPath: "/tmp/mask.png", Urgency: UrgencyCritical})
	if v, ok := h["urgency"].Value().(byte); !ok || v != 2 {
		t.Errorf("urgency = %v", h["urgency"])
	}
	if v, _ := h["image-path"].Value().(string); v != "/tmp/mask.png" {
		t.Errorf("image-path = %v", h["image-path"])
	}
	if _, ok := hints(Options{})["image-path"]; ok {
		t.Error("image-path set without an icon")
	}
}

func TestOptionsDefaults(t *testing.T) {
	if got := (Options{}).appName(); got != "maskdraw" {
		t.Errorf("app name = %q", got)
	}
	if got := (Options{}).expireMillis(); got != -1 {
		t.Errorf("expire = %d", got)
	}
	if got := (Options{Timeout: 2500 * time.Millisecond}).expireMillis(); got != 2500 {
		t.Errorf("expire = %d", got)
	}
}
