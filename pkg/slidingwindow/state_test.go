package slidingwindow

import (
	"sync"
	"testing"
)

func TestNewState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		start   uint64
		size    uint64
		wantErr bool
	}{
		{name: "valid window", start: 5, size: 10},
		{name: "zero size rejected", start: 5, size: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewState(tt.start, tt.size)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewState(%d, %d) expected error", tt.start, tt.size)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewState(%d, %d) unexpected error: %v", tt.start, tt.size, err)
			}
			if got := s.GetNext(); got != tt.start {
				t.Fatalf("GetNext()=%d, want %d", got, tt.start)
			}
			if _, ok := s.GetHighest(); ok {
				t.Fatalf("GetHighest() reported a value before any claim")
			}
		})
	}
}

func TestSetEnd(t *testing.T) {
	t.Parallel()
	s, err := NewState(10, 4)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}
	if err := s.SetEnd(9); err == nil {
		t.Fatalf("SetEnd(9) below next expected error")
	}
	if err := s.SetEnd(10); err != nil {
		t.Fatalf("SetEnd(10) unexpected error: %v", err)
	}
	if s.Done() {
		t.Fatalf("Done()=true before delivering the end sequence")
	}
}

func TestTryClaim_RespectsWindowAndEnd(t *testing.T) {
	t.Parallel()
	s, err := NewState(100, 3)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}

	for _, want := range []uint64{100, 101, 102} {
		got, ok := s.TryClaim()
		if !ok || got != want {
			t.Fatalf("TryClaim()=(%d,%v), want (%d,true)", got, ok, want)
		}
	}
	if got, ok := s.TryClaim(); ok {
		t.Fatalf("TryClaim() beyond window returned %d", got)
	}
	if h, _ := s.GetHighest(); h != 102 {
		t.Fatalf("GetHighest()=%d, want 102", h)
	}

	// A released sequence is claimable again.
	s.UnsetInflight(101)
	if got, ok := s.TryClaim(); !ok || got != 101 {
		t.Fatalf("TryClaim() after release=(%d,%v), want (101,true)", got, ok)
	}

	b, err := NewState(7, 10)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}
	if err := b.SetEnd(8); err != nil {
		t.Fatalf("SetEnd unexpected error: %v", err)
	}
	_, _ = b.TryClaim()
	_, _ = b.TryClaim()
	if got, ok := b.TryClaim(); ok {
		t.Fatalf("TryClaim() beyond end returned %d", got)
	}
}

func TestTryClaim_SkipsFetched(t *testing.T) {
	t.Parallel()
	s, err := NewState(0, 4)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}
	if err := s.MarkFetched(0, []byte("a")); err != nil {
		t.Fatalf("MarkFetched unexpected error: %v", err)
	}
	if got, ok := s.TryClaim(); !ok || got != 1 {
		t.Fatalf("TryClaim()=(%d,%v), want (1,true)", got, ok)
	}
}

func TestPeekAndAdvance(t *testing.T) {
	t.Parallel()
	s, err := NewState(5, 8)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}

	if _, _, ok := s.Peek(); ok {
		t.Fatalf("Peek() on empty state reported a payload")
	}
	if _, err := s.Advance(); err == nil {
		t.Fatalf("Advance() without a fetched payload expected error")
	}

	// Out of order: 6 arrives before 5.
	if err := s.MarkFetched(6, []byte("six")); err != nil {
		t.Fatalf("MarkFetched(6) unexpected error: %v", err)
	}
	if _, _, ok := s.Peek(); ok {
		t.Fatalf("Peek() must wait for sequence 5")
	}
	if err := s.MarkFetched(5, []byte("five")); err != nil {
		t.Fatalf("MarkFetched(5) unexpected error: %v", err)
	}
	if s.Buffered() != 2 {
		t.Fatalf("Buffered()=%d, want 2", s.Buffered())
	}

	for _, want := range []string{"five", "six"} {
		_, payload, ok := s.Peek()
		if !ok || string(payload) != want {
			t.Fatalf("Peek()=(%q,%v), want (%q,true)", payload, ok, want)
		}
		if _, err := s.Advance(); err != nil {
			t.Fatalf("Advance() unexpected error: %v", err)
		}
	}
	if s.GetNext() != 7 || s.Buffered() != 0 {
		t.Fatalf("after advance next=%d buffered=%d, want 7 and 0", s.GetNext(), s.Buffered())
	}

	// Delivered sequences are ignored and reported as fetched.
	if err := s.MarkFetched(5, []byte("again")); err != nil {
		t.Fatalf("MarkFetched below next unexpected error: %v", err)
	}
	if s.Buffered() != 0 || !s.IsFetched(5) {
		t.Fatalf("re-fetched delivered sequence must be ignored")
	}
}

func TestMarkFetched_BeyondEnd(t *testing.T) {
	t.Parallel()
	s, err := NewState(1, 4)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}
	if err := s.SetEnd(2); err != nil {
		t.Fatalf("SetEnd unexpected error: %v", err)
	}
	if err := s.MarkFetched(3, nil); err == nil {
		t.Fatalf("MarkFetched beyond end expected error")
	}
}

func TestDone(t *testing.T) {
	t.Parallel()
	s, err := NewState(1, 4)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}
	if s.Done() {
		t.Fatalf("unbounded state must never be done")
	}
	if err := s.SetEnd(1); err != nil {
		t.Fatalf("SetEnd unexpected error: %v", err)
	}
	if err := s.MarkFetched(1, []byte{1}); err != nil {
		t.Fatalf("MarkFetched unexpected error: %v", err)
	}
	if _, err := s.Advance(); err != nil {
		t.Fatalf("Advance unexpected error: %v", err)
	}
	if !s.Done() {
		t.Fatalf("Done()=false after delivering the end sequence")
	}
}

func TestFailureCounts(t *testing.T) {
	t.Parallel()
	s, err := NewState(0, 2)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}
	if got := s.IncrementFailureCount(0); got != 1 {
		t.Fatalf("IncrementFailureCount()=%d, want 1", got)
	}
	if got := s.IncrementFailureCount(0); got != 2 {
		t.Fatalf("IncrementFailureCount()=%d, want 2", got)
	}
	s.ResetFailureCount(0)
	if got := s.GetFailureCount(0); got != 0 {
		t.Fatalf("GetFailureCount()=%d after reset, want 0", got)
	}

	// Advance clears the counter of the delivered sequence.
	s.IncrementFailureCount(0)
	_ = s.MarkFetched(0, []byte{0})
	_, _ = s.Advance()
	if got := s.GetFailureCount(0); got != 0 {
		t.Fatalf("GetFailureCount()=%d after advance, want 0", got)
	}
}

func TestTryClaim_Concurrent(t *testing.T) {
	t.Parallel()
	s, err := NewState(0, 64)
	if err != nil {
		t.Fatalf("NewState unexpected error: %v", err)
	}

	var (
		mu      sync.Mutex
		claimed = make(map[uint64]int)
		wg      sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				seq, ok := s.TryClaim()
				if !ok {
					return
				}
				mu.Lock()
				claimed[seq]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(claimed) != 64 {
		t.Fatalf("claimed %d distinct sequences, want 64", len(claimed))
	}
	for seq, n := range claimed {
		if n != 1 {
			t.Fatalf("sequence %d claimed %d times", seq, n)
		}
	}
}
