package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/example/maskdraw/internal/config"
	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/notify"
	"github.com/example/maskdraw/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	config       *config.Config
	saveAlerts   bool
	copyAlerts   bool
	submitAlerts bool
	verbose      bool
	themeName    string
	activeTheme  *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("maskdraw", flag.ContinueOnError),
		program:  "maskdraw",
		notifier: notify.New(notify.LoadPreferences(os.Getenv)),
		config:   cfg,
	}
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving a mask")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying a mask")
	r.fs.BoolVar(&r.submitAlerts, "notify-submit", cfg.Notify.Submit, "show a desktop notification after submitting a mask")
	r.fs.BoolVar(&r.verbose, "v", false, "log editor events to stderr")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark, light or a config theme)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
		r.notifier.Enable(notify.EventSubmit, r.submitAlerts)
	}
	if r.verbose {
		editor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "replay":
		cmd, err = parseReplayCmd(subArgs, r)
	case "serve":
		cmd, err = parseServeCmd(subArgs, r)
	case "tools":
		cmd, err = parseToolsCmd(subArgs, r)
	case "themes":
		cmd, err = parseThemesCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// resolveTheme picks the theme named on the command line, in
// MASKDRAW_THEME or in the config file, falling back to the default.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("MASKDRAW_THEME")
	}
	if name == "" && r.config != nil {
		name = r.config.Theme
	}
	if r.config != nil {
		if t, ok := r.config.Themes[name]; ok {
			return t
		}
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "" && !strings.EqualFold(name, "default") {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

// sessionOptions turns the configuration into editor options.
func (r *root) sessionOptions() ([]editor.Option, error) {
	cfg := r.config
	if cfg == nil {
		cfg = config.New()
	}
	opts := []editor.Option{
		editor.WithHistoryLimits(cfg.History.MaxEntries, cfg.History.MaxBytes),
		editor.WithMaskThreshold(cfg.Mask.Threshold),
	}
	if cfg.Color != "" {
		c, err := theme.ParseColor(cfg.Color)
		if err != nil {
			return nil, fmt.Errorf("config color: %w", err)
		}
		opts = append(opts, editor.WithColor(c))
	}
	if cfg.Tool != "" {
		t, err := editor.ParseTool(cfg.Tool)
		if err != nil {
			return nil, fmt.Errorf("config tool: %w", err)
		}
		opts = append(opts, editor.WithTool(t))
	}
	return opts, nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.Is(err, flag.ErrHelp) {
			// usage was already printed by the flag set
			return
		}
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifySubmit(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Submit(detail, img)
}
