package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/maskdraw/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			currentTheme = nil

			if name, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = name
				cfg.Themes[name] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value
		var key, value string
		var ok bool
		if key, value, ok = strings.Cut(line, "="); !ok {
			if key, value, ok = strings.Cut(line, ":"); !ok {
				continue
			}
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Apply(key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		case currentSection == "history":
			err = setHistoryField(&cfg.History, key, value)
		case currentSection == "mask":
			err = setMaskField(&cfg.Mask, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case currentSection == "server":
			err = setServerField(&cfg.Server, key, value)
		}
		if err != nil {
			section := currentSection
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("line %d in section [%s]: %w", lineNo, section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "color":
		if _, err := theme.ParseColor(value); err != nil {
			return err
		}
		cfg.Color = value
	case "tool":
		cfg.Tool = value
	}
	return nil
}

func setHistoryField(h *History, key, value string) error {
	n, err := nonNegative(key, value)
	if err != nil {
		return err
	}
	switch key {
	case "max_entries":
		h.MaxEntries = n
	case "max_bytes":
		h.MaxBytes = n
	}
	return nil
}

func setMaskField(m *Mask, key, value string) error {
	if key != "threshold" {
		return nil
	}
	n, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return fmt.Errorf("invalid threshold %q: %w", value, err)
	}
	m.Threshold = uint8(n)
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	case "submit":
		n.Submit = b
	}
	return nil
}

func setServerField(s *Server, key, value string) error {
	switch key {
	case "port":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("invalid port %q: %w", value, err)
		}
		s.Port = value
	case "read_timeout", "write_timeout":
		n, err := nonNegative(key, value)
		if err != nil {
			return err
		}
		if key == "read_timeout" {
			s.ReadTimeout = time.Duration(n) * time.Second
		} else {
			s.WriteTimeout = time.Duration(n) * time.Second
		}
	case "max_sessions":
		n, err := nonNegative(key, value)
		if err != nil {
			return err
		}
		s.MaxSessions = n
	}
	return nil
}

func nonNegative(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("key %s must not be negative", key)
	}
	return n, nil
}
