package server

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/example/maskdraw/internal/editor"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("session limit reached")
)

// entry serialises access to one editor session.
type entry struct {
	mu        sync.Mutex
	id        string
	session   *editor.Session
	created   time.Time
	submitted []byte
}

// with runs fn while holding the session lock.
func (e *entry) with(fn func(s *editor.Session) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Registry holds live sessions keyed by UUID.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	max      int
	opts     []editor.Option
}

// NewRegistry creates a registry. max <= 0 means unlimited.
func NewRegistry(max int, opts ...editor.Option) *Registry {
	return &Registry{sessions: make(map[string]*entry), max: max, opts: opts}
}

// Create loads img into a new session fitted to a w x h container.
func (r *Registry) Create(img image.Image, w, h float64, extra ...editor.Option) (*entry, error) {
	r.mu.Lock()
	full := r.max > 0 && len(r.sessions) >= r.max
	r.mu.Unlock()
	if full {
		return nil, ErrTooManySessions
	}

	e := &entry{id: uuid.NewString(), created: time.Now()}
	opts := append(append([]editor.Option(nil), r.opts...), extra...)
	opts = append(opts, editor.WithSubmitListener(func(data []byte) { e.submitted = data }))
	s := editor.New(opts...)
	if err := s.Load(img, w, h); err != nil {
		s.Close()
		return nil, err
	}
	e.session = s

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.sessions) >= r.max {
		s.Close()
		return nil, ErrTooManySessions
	}
	r.sessions[e.id] = e
	return e, nil
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Delete closes and forgets a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.with(func(s *editor.Session) error {
		s.Close()
		return nil
	})
	return nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range all {
		e.with(func(s *editor.Session) error {
			s.Close()
			return nil
		})
	}
}
