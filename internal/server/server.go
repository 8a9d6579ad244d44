// Package server exposes editor sessions over HTTP so a browser or another
// process can drive the drawing tools and fetch masks.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/example/maskdraw/internal/editor"
	"github.com/example/maskdraw/internal/mask"
	"github.com/example/maskdraw/internal/script"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// Config controls the HTTP layer.
type Config struct {
	AppName      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxSessions  int
	// Quiet disables the request log.
	Quiet bool
	// SessionOptions are applied to every new session.
	SessionOptions []editor.Option
	// OnSubmit is called with each submitted mask.
	OnSubmit func(id string, mask []byte)
}

// Server wires a Registry to a fiber app.
type Server struct {
	app *fiber.App
	reg *Registry
	cfg Config
}

// New builds the app and its routes.
func New(cfg Config) *Server {
	if cfg.AppName == "" {
		cfg.AppName = "maskdraw"
	}
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AppName:      cfg.AppName,
	})
	app.Use(recover.New())
	if !cfg.Quiet {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path} | Content-Type: ${reqHeader:Content-Type}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	s := &Server{app: app, reg: NewRegistry(cfg.MaxSessions, cfg.SessionOptions...), cfg: cfg}

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready", "sessions": s.reg.Len()})
	})

	app.Post("/sessions", s.create)
	app.Get("/sessions/:id", s.state)
	app.Post("/sessions/:id/events", s.events)
	app.Get("/sessions/:id/mask", s.mask)
	app.Get("/sessions/:id/composite", s.composite)
	app.Post("/sessions/:id/submit", s.submit)
	app.Delete("/sessions/:id", s.remove)
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Registry returns the live sessions.
func (s *Server) Registry() *Registry { return s.reg }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the listener and closes every session.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.reg.Close()
	return err
}

func jsonError(c fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, editor.ErrNoChanges):
		return http.StatusConflict
	case errors.Is(err, editor.ErrEmptyImage):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func queryFloat(c fiber.Ctx, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("query " + key + " must be a positive number")
	}
	return v, nil
}

// create decodes the request body as the photo and opens a session fitted
// to the w x h container (defaults to the photo size).
func (s *Server) create(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return jsonError(c, http.StatusBadRequest, errors.New("request body must be a PNG or JPEG image"))
	}
	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err)
	}
	b := img.Bounds()
	w, err := queryFloat(c, "w", float64(b.Dx()))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err)
	}
	h, err := queryFloat(c, "h", float64(b.Dy()))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err)
	}

	var extra []editor.Option
	if raw := c.Query("tool"); raw != "" {
		t, err := editor.ParseTool(raw)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, err)
		}
		extra = append(extra, editor.WithTool(t))
	}

	e, err := s.reg.Create(img, w, h, extra...)
	if err != nil {
		return jsonError(c, statusFor(err), err)
	}
	log.Printf("session %s opened: %s %dx%d", e.id, format, b.Dx(), b.Dy())

	var st State
	e.with(func(sess *editor.Session) error {
		st = stateOf(e.id, sess)
		return nil
	})
	return c.Status(http.StatusCreated).JSON(st)
}

func (s *Server) lookup(c fiber.Ctx) (*entry, error) {
	e, err := s.reg.Get(c.Params("id"))
	if err != nil {
		return nil, jsonError(c, statusFor(err), err)
	}
	return e, nil
}

func (s *Server) state(c fiber.Ctx) error {
	e, err := s.lookup(c)
	if e == nil {
		return err
	}
	var st State
	e.with(func(sess *editor.Session) error {
		st = stateOf(e.id, sess)
		return nil
	})
	return c.JSON(st)
}

// events applies a JSON array of events in order and returns the new state.
// A malformed batch is rejected before any event runs.
func (s *Server) events(c fiber.Ctx) error {
	e, err := s.lookup(c)
	if e == nil {
		return err
	}
	var evs []Event
	if err := json.Unmarshal(c.Body(), &evs); err != nil {
		return jsonError(c, http.StatusBadRequest, err)
	}
	cmds, err := Commands(evs)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err)
	}
	var st State
	e.with(func(sess *editor.Session) error {
		script.Apply(sess, cmds)
		st = stateOf(e.id, sess)
		return nil
	})
	return c.JSON(st)
}

func sendPNG(c fiber.Ctx, data []byte) error {
	c.Set("Content-Type", "image/png")
	return c.Send(data)
}

func (s *Server) mask(c fiber.Ctx) error {
	e, err := s.lookup(c)
	if e == nil {
		return err
	}
	var data []byte
	err = e.with(func(sess *editor.Session) error {
		var err error
		data, err = sess.Mask()
		return err
	})
	if err != nil {
		return jsonError(c, statusFor(err), err)
	}
	return sendPNG(c, data)
}

func (s *Server) composite(c fiber.Ctx) error {
	e, err := s.lookup(c)
	if e == nil {
		return err
	}
	var buf bytes.Buffer
	err = e.with(func(sess *editor.Session) error {
		return mask.EncodePNG(&buf, sess.Composite())
	})
	if err != nil {
		return jsonError(c, statusFor(err), err)
	}
	return sendPNG(c, buf.Bytes())
}

func (s *Server) submit(c fiber.Ctx) error {
	e, err := s.lookup(c)
	if e == nil {
		return err
	}
	var data []byte
	err = e.with(func(sess *editor.Session) error {
		if err := sess.Submit(); err != nil {
			return err
		}
		data = e.submitted
		return nil
	})
	if err != nil {
		return jsonError(c, statusFor(err), err)
	}
	if s.cfg.OnSubmit != nil {
		s.cfg.OnSubmit(e.id, data)
	}
	return sendPNG(c, data)
}

func (s *Server) remove(c fiber.Ctx) error {
	id := c.Params("id")
	if err := s.reg.Delete(id); err != nil {
		return jsonError(c, statusFor(err), err)
	}
	log.Printf("session %s closed", id)
	return c.SendStatus(http.StatusNoContent)
}
