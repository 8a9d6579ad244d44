package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/example/maskdraw/internal/config"
	"github.com/example/maskdraw/internal/server"
)

// serveCmd hosts editor sessions over HTTP.
type serveCmd struct {
	*root
	fs          *flag.FlagSet
	port        string
	maxSessions int
	quiet       bool
	saveMasks   bool
}

func (s *serveCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	sub := r.subcommand("serve")
	if sub.config == nil {
		sub.config = config.New()
	}
	sub.config.ApplyEnv(os.Getenv)

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	s := &serveCmd{root: sub, fs: fs}
	fs.StringVar(&s.port, "port", sub.config.Server.Port, "port to listen on")
	fs.IntVar(&s.maxSessions, "max-sessions", sub.config.Server.MaxSessions, "maximum concurrent sessions, 0 for no limit")
	fs.BoolVar(&s.quiet, "quiet", false, "disable the request log")
	fs.BoolVar(&s.saveMasks, "save", false, "write submitted masks to save_dir as <session>.png")
	fs.Usage = usageFunc(s)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: s}
	}
	if s.saveMasks && sub.config.SaveDir == "" {
		return nil, errors.New("serve: -save needs save_dir in the config file")
	}
	return s, nil
}

func (s *serveCmd) onSubmit(id string, data []byte) {
	log.Printf("session %s submitted %d bytes", id, len(data))
	if s.saveMasks {
		path := filepath.Join(s.config.SaveDir, id+".png")
		if err := writeFile(path, data); err != nil {
			log.Printf("save mask: %v", err)
		} else {
			s.notifySave(path)
		}
	}
	if preview, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		s.notifySubmit("session "+id, preview)
	}
}

func (s *serveCmd) Run() error {
	opts, err := s.sessionOptions()
	if err != nil {
		return err
	}
	srv := server.New(server.Config{
		AppName:        s.program,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxSessions:    s.maxSessions,
		Quiet:          s.quiet,
		SessionOptions: opts,
		OnSubmit:       s.onSubmit,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Print("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + s.port
	log.Printf("listening on %s", addr)
	if err := srv.Listen(addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
