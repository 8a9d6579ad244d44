package mask

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/maskdraw/internal/raster"
)

// Listener receives a PNG encoded mask.
type Listener func(png []byte)

// Emitter encodes masks off the caller's goroutine. Only the most recent
// pending snapshot is kept; older ones are replaced before encoding starts.
type Emitter struct {
	listener  Listener
	threshold uint8
	log       *slog.Logger

	ch   chan raster.Snapshot
	done chan struct{}

	mu      sync.Mutex
	cond    *sync.Cond
	pending int
	closed  bool
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithThreshold sets the alpha threshold passed to Extract.
func WithThreshold(t uint8) EmitterOption {
	return func(e *Emitter) { e.threshold = t }
}

// WithLogger sets the logger used for encode failures.
func WithLogger(l *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEmitter starts the encoding goroutine. A nil listener yields an emitter
// that discards everything.
func NewEmitter(l Listener, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		listener: l,
		log:      slog.New(slog.DiscardHandler),
		ch:       make(chan raster.Snapshot, 1),
		done:     make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	for _, o := range opts {
		o(e)
	}
	go e.run()
	return e
}

// Emit queues snap for encoding and returns immediately.
func (e *Emitter) Emit(snap raster.Snapshot) {
	if e == nil || e.listener == nil || snap.IsZero() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.pending++
	for {
		select {
		case e.ch <- snap:
			return
		default:
		}
		select {
		case <-e.ch:
			e.pending--
			e.log.Debug("mask superseded")
		default:
		}
	}
}

func (e *Emitter) run() {
	defer close(e.done)
	for snap := range e.ch {
		data, err := Encode(snap.Image(), e.threshold)
		if err != nil {
			e.log.LogAttrs(context.Background(), slog.LevelWarn, "mask encode failed", slog.Any("err", err))
		} else {
			e.listener(data)
		}
		e.mu.Lock()
		e.pending--
		e.cond.Broadcast()
		e.mu.Unlock()
	}
}

// Flush blocks until every queued mask has been delivered or superseded.
func (e *Emitter) Flush() {
	if e == nil {
		return
	}
	e.mu.Lock()
	for e.pending > 0 {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// Close delivers any pending mask and stops the goroutine.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	close(e.ch)
	e.mu.Unlock()
	<-e.done
}
