//go:build linux

package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyIface = "org.freedesktop.Notifications.Notify"
)

// hints builds the freedesktop hint map for opts.
func hints(opts Options) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(opts.Urgency)),
	}
	if opts.IconPath != "" {
		h["image-path"] = dbus.MakeVariant(opts.IconPath)
	}
	return h
}

// Notify sends a desktop notification using the Freedesktop.org notification spec.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object(notifyDest, notifyPath)
	call := obj.Call(notifyIface, 0,
		opts.appName(), uint32(0), opts.IconPath, title, body, []string{}, hints(opts), opts.expireMillis())
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	return nil
}
