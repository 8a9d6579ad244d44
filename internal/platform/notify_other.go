//go:build !linux

package platform

import "errors"

// ErrUnsupported is returned where no notification backend exists.
var ErrUnsupported = errors.New("desktop notifications are not supported on this platform")

// Notify reports ErrUnsupported.
func Notify(title, body string, opts Options) error {
	return ErrUnsupported
}
