package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/theme"
)

type toolsCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
}

func parseToolsCmd(args []string, r *root) (*toolsCmd, error) {
	fs := flag.NewFlagSet("tools", flag.ContinueOnError)
	cmd := &toolsCmd{root: r.subcommand("tools"), fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

var toolHelp = map[editor.Tool]string{
	editor.ToolPan:       "drag to move the photo; middle button or Ctrl/Cmd pans with any tool",
	editor.ToolBrush:     "freehand strokes",
	editor.ToolRectangle: "rectangle outline (alias: rect)",
	editor.ToolArrow:     "line with a filled head at the release point",
	editor.ToolText:      "click to place text",
	editor.ToolComment:   "dashed box with a note underneath",
}

func (c *toolsCmd) Run() error {
	for _, t := range editor.Tools {
		fmt.Fprintf(c.stdout, "%-10s %s\n", t, toolHelp[t])
	}
	return nil
}

func (c *toolsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

type themesCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
}

func parseThemesCmd(args []string, r *root) (*themesCmd, error) {
	fs := flag.NewFlagSet("themes", flag.ContinueOnError)
	cmd := &themesCmd{root: r.subcommand("themes"), fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *themesCmd) Run() error {
	fmt.Fprintln(c.stdout, "default")
	for _, name := range theme.Builtin() {
		fmt.Fprintln(c.stdout, name)
	}
	if c.config == nil {
		return nil
	}
	var names []string
	for name := range c.config.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.stdout, "%s (config)\n", name)
	}
	return nil
}

func (c *themesCmd) FlagSet() *flag.FlagSet {
	return c.fs
}
