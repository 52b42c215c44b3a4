package landmark

import (
	"sync/atomic"
	"time"
)

// emptyFrame is returned before the first ingest. It is never mutated.
var emptyFrame = &Frame{}

// Store holds the most recent frame. Ingest swaps in a whole new frame
// atomically so a reader always observes one consistent frame. There is no
// queue: only the newest frame matters.
type Store struct {
	current atomic.Pointer[Frame]
	seq     atomic.Uint64
	now     func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Ingest replaces the current frame. A nil frame clears every entity.
// The stored value is a shallow copy stamped with a sequence number and, if
// unset, the receive time; the landmark slices are shared with the caller.
func (s *Store) Ingest(f *Frame) {
	next := &Frame{}
	if f != nil {
		*next = *f
	}
	next.Seq = s.seq.Add(1)
	if next.ReceivedAt.IsZero() {
		next.ReceivedAt = s.now()
	}
	s.current.Store(next)
}

// Current returns the latest frame, or an empty frame before the first ingest.
func (s *Store) Current() *Frame {
	if f := s.current.Load(); f != nil {
		return f
	}
	return emptyFrame
}

// Seq returns the sequence number of the current frame (0 before any ingest).
func (s *Store) Seq() uint64 {
	return s.Current().Seq
}

// Age returns how long ago the current frame was received. It reports false
// before the first ingest.
func (s *Store) Age() (time.Duration, bool) {
	f := s.current.Load()
	if f == nil {
		return 0, false
	}
	return s.now().Sub(f.ReceivedAt), true
}
