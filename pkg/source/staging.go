package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/store"
	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
)

// Staging decodes each delivered checkpoint, re-encodes it and writes it to a
// store. A checkpoint that fails to decode or to stage is reported as
// CheckpointSkipped and the stream continues.
type Staging struct {
	st *store.Store
	o  events.Observer

	mu     sync.Mutex
	last   uint64
	staged bool
}

// NewStaging returns a Staging writing to st. o may be nil.
func NewStaging(st *store.Store, o events.Observer) *Staging {
	return &Staging{st: st, o: o}
}

// Handle is a Handler.
func (s *Staging) Handle(ctx context.Context, seq uint64, payload []byte) error {
	skip := func(err error) error {
		events.Emit(ctx, s.o, events.Event{Kind: events.CheckpointSkipped, Sequence: seq, Err: err})
		return nil
	}

	cp, err := sui.Decode(payload)
	if err != nil {
		return skip(err)
	}
	if got := cp.Sequence(); got != seq {
		return skip(fmt.Errorf("checkpoint %d carries sequence number %d", seq, got))
	}
	b, err := sui.Encode(cp)
	if err != nil {
		return skip(err)
	}
	if err := s.st.Put(ctx, seq, b); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return skip(err)
	}

	s.mu.Lock()
	if !s.staged || seq > s.last {
		s.last, s.staged = seq, true
	}
	s.mu.Unlock()

	events.Emit(ctx, s.o, events.Event{
		Kind:     events.CheckpointStaged,
		Sequence: seq,
		Count:    int64(len(cp.Transactions)),
	})
	return nil
}

// LastStaged returns the highest sequence written to the store in this run.
// Skipped checkpoints do not count, so it can trail the adapter's
// LastDelivered.
func (s *Staging) LastStaged() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.staged
}
