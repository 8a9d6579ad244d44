package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/maskdraw/internal/theme"
)

// History bounds the undo stack of each session.
type History struct {
	MaxEntries int
	MaxBytes   int
}

// Mask controls mask derivation.
type Mask struct {
	Threshold uint8
}

// Notify holds notification settings.
type Notify struct {
	Save   bool
	Copy   bool
	Submit bool
}

// Server holds the HTTP service settings. Timeouts are in seconds in the
// rc file and the environment.
type Server struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxSessions  int
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Color   string
	Tool    string
	History History
	Mask    Mask
	Notify  Notify
	Server  Server
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "",
		Color: "#FF4081",
		Tool:  "pan",
		History: History{
			MaxEntries: 50,
			MaxBytes:   512 << 20,
		},
		Server: Server{
			Port:         "3000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			MaxSessions:  64,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.Color != "" {
		fmt.Fprintf(&sb, "color = %s\n", c.Color)
	}
	if c.Tool != "" {
		fmt.Fprintf(&sb, "tool = %s\n", c.Tool)
	}
	sb.WriteString("\n")

	sb.WriteString("[history]\n")
	fmt.Fprintf(&sb, "max_entries = %d\n", c.History.MaxEntries)
	fmt.Fprintf(&sb, "max_bytes = %d\n", c.History.MaxBytes)
	sb.WriteString("\n")

	sb.WriteString("[mask]\n")
	fmt.Fprintf(&sb, "threshold = %d\n", c.Mask.Threshold)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "submit = %v\n", c.Notify.Submit)
	sb.WriteString("\n")

	sb.WriteString("[server]\n")
	fmt.Fprintf(&sb, "port = %s\n", c.Server.Port)
	fmt.Fprintf(&sb, "read_timeout = %d\n", int(c.Server.ReadTimeout/time.Second))
	fmt.Fprintf(&sb, "write_timeout = %d\n", int(c.Server.WriteTimeout/time.Second))
	fmt.Fprintf(&sb, "max_sessions = %d\n", c.Server.MaxSessions)
	sb.WriteString("\n")

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, e := range t.Entries() {
			fmt.Fprintf(&sb, "%s: %s\n", e.Key, theme.Hex(e.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
