package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/maskdraw/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	stdout io.Writer
	// path overrides where save writes.
	path string
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	c := &configCmd{root: r.subcommand("config"), fs: fs, stdout: os.Stdout}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func (c *configCmd) effective() *config.Config {
	if c.config == nil {
		return config.New()
	}
	return c.config
}

func (c *configCmd) runPrint() error {
	_, err := io.WriteString(c.stdout, c.effective().String())
	return err
}

func (c *configCmd) runSave() error {
	path := c.path
	if path == "" {
		path = config.NewLoader(version, configPathOverride).GetConfigPath()
	}
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("cannot determine a config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(c.effective().String()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", path)
	return nil
}
