package platform

import "time"

// Urgency maps to the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// AppName identifies the sender; empty means "maskdraw".
	AppName string
	// IconPath, when non-empty, points to an image file the notification
	// server may show next to the message.
	IconPath string
	// Timeout is how long the message stays up. Zero lets the server decide.
	Timeout time.Duration
	Urgency Urgency
}

func (o Options) appName() string {
	if o.AppName == "" {
		return "maskdraw"
	}
	return o.AppName
}

// expireMillis converts Timeout into the freedesktop expire_timeout value,
// where -1 means server default.
func (o Options) expireMillis() int32 {
	if o.Timeout <= 0 {
		return -1
	}
	return int32(o.Timeout / time.Millisecond)
}
