package slidingwindow

import (
	"errors"
	"fmt"
	"sync"
)

// State is a thread-safe in-memory store for the fetch window: the delivery
// watermark, fetched-but-undelivered payloads, and inflight/failed sequences.
//
// The active window is [next, next+size), optionally capped by an end sequence.
type State struct {
	mu sync.Mutex

	next       uint64 // lowest undelivered sequence watermark.
	highest    uint64 // highest sequence ever claimed for fetching.
	dispatched bool   // whether highest is meaningful.
	size       uint64 // maximum number of sequences ahead of next that may be claimed.

	end     uint64
	bounded bool

	fetched    map[uint64][]byte   // payloads waiting for delivery, keyed by sequence.
	inflight   map[uint64]struct{} // sequences currently being fetched.
	failCounts map[uint64]int      // per-sequence failure counters.
}

// NewState creates a State whose first delivered sequence is start.
func NewState(start, size uint64) (*State, error) {
	if size == 0 {
		return nil, errors.New("invalid window size: must be greater than 0")
	}
	return &State{
		next:       start,
		size:       size,
		fetched:    make(map[uint64][]byte),
		inflight:   make(map[uint64]struct{}),
		failCounts: make(map[uint64]int),
	}, nil
}

// SetEnd bounds the window at end, inclusive.
func (s *State) SetEnd(end uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if end < s.next {
		return fmt.Errorf(
			"invalid end sequence: end < next: %d < %d",
			end,
			s.next,
		)
	}
	s.end = end
	s.bounded = true
	return nil
}

// GetNext returns the lowest undelivered sequence.
func (s *State) GetNext() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// GetHighest returns the highest sequence claimed so far, if any.
func (s *State) GetHighest() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highest, s.dispatched
}

// Buffered returns the number of fetched sequences waiting for delivery.
func (s *State) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fetched)
}

// Inflight returns the number of sequences currently being fetched.
func (s *State) Inflight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Done reports whether every sequence up to the end bound has been delivered.
// An unbounded window is never done.
func (s *State) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounded && s.next > s.end
}

// TryClaim finds the lowest sequence in the window that is neither fetched nor
// inflight, marks it inflight and returns it.
func (s *State) TryClaim() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := s.next + s.size - 1
	if limit < s.next {
		// overflow near MaxUint64
		limit = ^uint64(0)
	}
	if s.bounded && s.end < limit {
		limit = s.end
	}
	for seq := s.next; seq <= limit; seq++ {
		if _, ok := s.fetched[seq]; ok {
			continue
		}
		if _, ok := s.inflight[seq]; ok {
			continue
		}
		s.inflight[seq] = struct{}{}
		if !s.dispatched || seq > s.highest {
			s.highest = seq
			s.dispatched = true
		}
		return seq, true
	}
	return 0, false
}

// IsInflight returns true if a sequence is being fetched.
func (s *State) IsInflight(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[seq]
	return ok
}

// UnsetInflight removes a sequence from the inflight set.
func (s *State) UnsetInflight(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, seq)
}

// MarkFetched stores the payload for seq until it can be delivered.
// Sequences below next were already delivered and are ignored.
func (s *State) MarkFetched(seq uint64, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.next {
		return nil
	}
	if s.bounded && seq > s.end {
		return fmt.Errorf(
			"invalid sequence: sequence is greater than end: %d > %d",
			seq,
			s.end,
		)
	}
	s.fetched[seq] = payload
	return nil
}

// IsFetched returns true if seq is delivered or waiting for delivery.
func (s *State) IsFetched(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.next {
		return true
	}
	_, ok := s.fetched[seq]
	return ok
}

// Peek returns the payload at the watermark if it has been fetched.
func (s *State) Peek() (uint64, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.fetched[s.next]
	return s.next, payload, ok
}

// Advance drops the payload at the watermark and moves next forward by one.
// It fails when the watermark payload has not been fetched.
func (s *State) Advance() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fetched[s.next]; !ok {
		return s.next, fmt.Errorf("sequence %d has not been fetched", s.next)
	}
	delete(s.fetched, s.next)
	delete(s.failCounts, s.next)
	s.next++
	return s.next, nil
}

// GetFailureCount returns the current failure count for a sequence.
func (s *State) GetFailureCount(seq uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failCounts[seq]
}

// IncrementFailureCount increments the failure count for a sequence.
// Returns the new failure count.
func (s *State) IncrementFailureCount(seq uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCounts[seq]++
	return s.failCounts[seq]
}

// ResetFailureCount resets the failure count for a sequence.
func (s *State) ResetFailureCount(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failCounts, seq)
}
