// Package history keeps a linear undo/redo stack of full raster snapshots.
package history

import "github.com/example/maskdraw/internal/raster"

const (
	// DefaultMaxEntries caps the number of retained entries.
	DefaultMaxEntries = 50
	// DefaultMaxBytes caps the retained snapshot payload.
	DefaultMaxBytes = 512 << 20
)

// Entry is one committed raster state.
type Entry struct {
	Seq      uint64
	Snapshot raster.Snapshot
}

// Stack is a linear history. Entry 0 is the floor; step indexes the entry
// that reflects the visible surface.
type Stack struct {
	entries []Entry
	step    int
	seq     uint64
	bytes   int

	maxEntries int
	maxBytes   int
}

// Option configures a Stack.
type Option func(*Stack)

// WithMaxEntries bounds the number of retained entries. Zero disables the cap.
func WithMaxEntries(n int) Option {
	return func(s *Stack) {
		if n >= 0 {
			s.maxEntries = n
		}
	}
}

// WithMaxBytes bounds the retained snapshot payload. Zero disables the cap.
func WithMaxBytes(n int) Option {
	return func(s *Stack) {
		if n >= 0 {
			s.maxBytes = n
		}
	}
}

// New returns an empty stack. Call Reset before committing.
func New(opts ...Option) *Stack {
	s := &Stack{maxEntries: DefaultMaxEntries, maxBytes: DefaultMaxBytes}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Reset discards every entry and installs snap as the floor.
func (s *Stack) Reset(snap raster.Snapshot) {
	s.seq++
	s.entries = []Entry{{Seq: s.seq, Snapshot: snap}}
	s.step = 0
	s.bytes = snap.Size()
}

// Commit drops any redo tail and appends snap as the new current entry.
func (s *Stack) Commit(snap raster.Snapshot) {
	if len(s.entries) == 0 {
		s.Reset(snap)
		return
	}
	for _, e := range s.entries[s.step+1:] {
		s.bytes -= e.Snapshot.Size()
	}
	clear(s.entries[s.step+1:])
	s.entries = s.entries[:s.step+1]

	s.seq++
	s.entries = append(s.entries, Entry{Seq: s.seq, Snapshot: snap})
	s.bytes += snap.Size()
	s.step = len(s.entries) - 1
	s.evict()
}

func (s *Stack) evict() {
	drop := 0
	for len(s.entries)-drop > 1 {
		over := (s.maxEntries > 0 && len(s.entries)-drop > s.maxEntries) ||
			(s.maxBytes > 0 && s.bytes > s.maxBytes)
		if !over {
			break
		}
		s.bytes -= s.entries[drop].Snapshot.Size()
		drop++
	}
	if drop == 0 {
		return
	}
	kept := make([]Entry, len(s.entries)-drop)
	copy(kept, s.entries[drop:])
	s.entries = kept
	s.step -= drop
	if s.step < 0 {
		s.step = 0
	}
}

// Undo steps back one entry and returns the snapshot to restore. At the
// floor it returns entry 0 again with ok false.
func (s *Stack) Undo() (raster.Snapshot, bool) {
	if len(s.entries) == 0 {
		return raster.Snapshot{}, false
	}
	if s.step == 0 {
		return s.entries[0].Snapshot, false
	}
	s.step--
	return s.entries[s.step].Snapshot, true
}

// Redo moves forward one entry if one exists.
func (s *Stack) Redo() (raster.Snapshot, bool) {
	if !s.CanRedo() {
		return raster.Snapshot{}, false
	}
	s.step++
	return s.entries[s.step].Snapshot, true
}

// Current returns the entry at step.
func (s *Stack) Current() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[s.step], true
}

// CanUndo reports whether an earlier entry exists.
func (s *Stack) CanUndo() bool { return s.step > 0 }

// CanRedo reports whether a later entry exists.
func (s *Stack) CanRedo() bool { return s.step+1 < len(s.entries) }

// Step is the index of the current entry.
func (s *Stack) Step() int { return s.step }

// Len is the number of retained entries.
func (s *Stack) Len() int { return len(s.entries) }

// Bytes reports the retained snapshot payload.
func (s *Stack) Bytes() int { return s.bytes }
