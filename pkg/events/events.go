// Package events defines the structured events pipeline components emit and the
// observers that consume them (logs, metrics, a Kafka topic).
package events

import (
	"context"
	"sync"
	"time"
)

// Kind names what happened.
type Kind string

const (
	CheckpointStaged      Kind = "checkpoint_staged"
	CheckpointSkipped     Kind = "checkpoint_skipped"
	CheckpointTransformed Kind = "checkpoint_transformed"
	RecordMatched         Kind = "record_matched"
	RecordInserted        Kind = "record_inserted"
	RecordRejected        Kind = "record_rejected"
	BatchFailed           Kind = "batch_failed"
)

// Event is one pipeline occurrence. Sequence is always set; Sender and Function
// identify a record; Count carries row counts for batch-level events.
// TransactionIndex and Path locate a rejected record inside its checkpoint.
type Event struct {
	Kind             Kind      `json:"kind"`
	Sequence         uint64    `json:"sequence"`
	TransactionIndex *int      `json:"transaction_index,omitempty"`
	Path             string    `json:"path,omitempty"`
	Sender           string    `json:"sender,omitempty"`
	Function         string    `json:"function,omitempty"`
	Count            int64     `json:"count,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	Time             time.Time `json:"time"`
	Err              error     `json:"-"`
}

// Observer receives events. Implementations must be safe for concurrent use and
// must not block the pipeline on their own failures.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, e Event)

func (f ObserverFunc) Observe(ctx context.Context, e Event) { f(ctx, e) }

// Nop discards events.
var Nop Observer = ObserverFunc(func(context.Context, Event) {})

type multi []Observer

func (m multi) Observe(ctx context.Context, e Event) {
	for _, o := range m {
		o.Observe(ctx, e)
	}
}

// Multi fans out to every non-nil observer in order.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Emit stamps e and hands it to o. A nil observer is allowed.
func Emit(ctx context.Context, o Observer, e Event) {
	if o == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	if e.Err != nil && e.Reason == "" {
		e.Reason = e.Err.Error()
	}
	o.Observe(ctx, e)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfKind returns the recorded events of kind k.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
