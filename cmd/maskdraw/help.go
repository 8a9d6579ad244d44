package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of)
	if err != nil {
		log.Printf("error rendering help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc renders h's help template to the flag set's output.
func usageFunc(h HelpData) func() {
	return func() {
		out := flag.CommandLine.Output()
		if fs := h.FlagSet(); fs != nil {
			out = fs.Output()
		}
		fmt.Fprintln(out, (&UsageError{of: h}).Error())
	}
}

func (r *root) Template() string {
	return "root.txt"
}

func (a *annotateCmd) Template() string {
	return "annotate.txt"
}

func (c *replayCmd) Template() string {
	return "replay.txt"
}

func (s *serveCmd) Template() string {
	return "serve.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}

func (c *toolsCmd) Template() string {
	return "tools.txt"
}

func (c *themesCmd) Template() string {
	return "themes.txt"
}
