package id

import (
	"sync"
	"time"
)

// Sequence hands out time based int64 ids (epoch milliseconds). Ids are
// strictly increasing within one Sequence, so several entities created in
// the same millisecond still get distinct ids.
type Sequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewSequence returns a Sequence backed by the wall clock.
func NewSequence() *Sequence {
	return &Sequence{now: time.Now}
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.now().UnixMilli()
	if n <= s.last {
		n = s.last + 1
	}
	s.last = n
	return n
}
