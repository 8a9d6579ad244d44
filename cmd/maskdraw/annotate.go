package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/example/maskdraw/internal/appstate"
	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/theme"
)

// annotateCmd represents the annotate subcommand.
type annotateCmd struct {
	*root
	fs     *flag.FlagSet
	file   string
	output string
	tool   string
	color  string
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func (r *root) subcommand(name string) *root {
	if r == nil {
		r = &root{program: "maskdraw"}
	}
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:      program,
		notifier:     r.notifier,
		config:       r.config,
		saveAlerts:   r.saveAlerts,
		copyAlerts:   r.copyAlerts,
		submitAlerts: r.submitAlerts,
		verbose:      r.verbose,
		themeName:    r.themeName,
		activeTheme:  r.activeTheme,
	}
}

// drawFlags registers the flags shared by annotate and replay.
func drawFlags(fs *flag.FlagSet, tool, color, output *string) {
	fs.StringVar(output, "output", "", "mask output path (default <image>-mask.png in save_dir or next to the image)")
	fs.StringVar(tool, "tool", "", "initial tool (pan, brush, rectangle, arrow, text, comment)")
	fs.StringVar(color, "color", "", "stroke color as #RRGGBB or a color name")
}

// drawOptions adds the -tool and -color overrides to the config options.
func (r *root) drawOptions(tool, color string) ([]editor.Option, error) {
	opts, err := r.sessionOptions()
	if err != nil {
		return nil, err
	}
	if tool != "" {
		t, err := editor.ParseTool(tool)
		if err != nil {
			return nil, err
		}
		opts = append(opts, editor.WithTool(t))
	}
	if color != "" {
		c, err := theme.ParseColor(color)
		if err != nil {
			return nil, fmt.Errorf("-color: %w", err)
		}
		opts = append(opts, editor.WithColor(c))
	}
	return opts, nil
}

func (r *root) saveDir() string {
	if r.config == nil {
		return ""
	}
	return r.config.SaveDir
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	a := &annotateCmd{root: r.subcommand("annotate"), fs: fs}
	drawFlags(fs, &a.tool, &a.color, &a.output)
	fs.Usage = usageFunc(a)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: a}
	}
	a.file = fs.Arg(0)
	if a.output == "" {
		a.output = maskPath(a.file, a.saveDir())
	}
	return a, nil
}

func (a *annotateCmd) Run() error {
	img, err := loadImage(a.file)
	if err != nil {
		return err
	}
	opts, err := a.drawOptions(a.tool, a.color)
	if err != nil {
		return err
	}
	opts = append(opts,
		editor.WithSubmitListener(func(data []byte) {
			if err := writeFile(a.output, data); err != nil {
				log.Printf("submit: %v", err)
				return
			}
			log.Printf("mask written to %s", a.output)
		}),
		editor.WithCancelListener(func() { log.Print("annotation cancelled") }),
	)
	sess := editor.New(opts...)
	defer sess.Close()

	st := appstate.New(
		appstate.WithImage(img),
		appstate.WithOutput(a.output),
		appstate.WithSession(sess),
		appstate.WithTheme(a.activeTheme),
		appstate.WithNotifier(a.notifier),
	)
	st.Run()
	return nil
}
