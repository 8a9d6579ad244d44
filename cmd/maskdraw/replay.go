package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/script"
	"gonum.org/v1/gonum/spatial/r2"
)

// replayCmd applies a gesture script to an image headlessly.
type replayCmd struct {
	*root
	fs        *flag.FlagSet
	file      string
	script    string
	output    string
	overlay   string
	composite string
	tool      string
	color     string
	width     float64
	height    float64
	submit    bool

	stdin  io.Reader
	stderr io.Writer
}

func (c *replayCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseReplayCmd(args []string, r *root) (*replayCmd, error) {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	c := &replayCmd{root: r.subcommand("replay"), fs: fs, stdin: os.Stdin, stderr: os.Stderr}
	drawFlags(fs, &c.tool, &c.color, &c.output)
	fs.StringVar(&c.script, "script", "", "gesture script to apply, - for standard input")
	fs.StringVar(&c.overlay, "overlay", "", "also write the transparent annotation layer to this path")
	fs.StringVar(&c.composite, "composite", "", "also write the photo with annotations to this path")
	fs.Float64Var(&c.width, "w", 0, "container width the script coordinates refer to (default: coordinates are image pixels)")
	fs.Float64Var(&c.height, "h", 0, "container height the script coordinates refer to (default: coordinates are image pixels)")
	fs.BoolVar(&c.submit, "submit", false, "fail unless the script left changes to submit")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	if c.script == "" {
		return nil, errors.New("replay: -script is required")
	}
	if c.width < 0 || c.height < 0 {
		return nil, errors.New("replay: -w and -h must not be negative")
	}
	c.file = fs.Arg(0)
	if c.output == "" {
		c.output = maskPath(c.file, c.saveDir())
	}
	return c, nil
}

func (c *replayCmd) readScript() ([]script.Command, error) {
	if c.script == "-" {
		return script.Parse(c.stdin)
	}
	f, err := os.Open(c.script)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	cmds, err := script.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.script, err)
	}
	return cmds, nil
}

func (c *replayCmd) Run() error {
	img, err := loadImage(c.file)
	if err != nil {
		return err
	}
	cmds, err := c.readScript()
	if err != nil {
		return err
	}
	opts, err := c.drawOptions(c.tool, c.color)
	if err != nil {
		return err
	}
	var submitted []byte
	opts = append(opts, editor.WithSubmitListener(func(data []byte) { submitted = data }))
	sess := editor.New(opts...)
	defer sess.Close()

	b := img.Bounds()
	w, h := c.width, c.height
	if w == 0 {
		w = float64(b.Dx())
	}
	if h == 0 {
		h = float64(b.Dy())
	}
	if err := sess.Load(img, w, h); err != nil {
		return err
	}
	if c.width == 0 && c.height == 0 {
		// without a container, script coordinates are image pixels
		sess.Viewport().Set(1, r2.Vec{})
	}
	script.Apply(sess, cmds)

	var data []byte
	if c.submit {
		if err := sess.Submit(); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		data = submitted
	} else if data, err = sess.Mask(); err != nil {
		return err
	}
	if err := writeFile(c.output, data); err != nil {
		return err
	}
	fmt.Fprintf(c.stderr, "mask written to %s\n", c.output)
	c.notifySave(c.output)

	if c.overlay != "" {
		if err := writeImage(c.overlay, sess.Surface().Image()); err != nil {
			return err
		}
	}
	if c.composite != "" {
		if err := writeImage(c.composite, sess.Composite()); err != nil {
			return err
		}
	}
	return nil
}
