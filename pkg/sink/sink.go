// Package sink loads matched records into a persistent store.
//
// Records are validated before they reach the database. A record that fails
// validation is dropped and reported; a failure talking to the database aborts
// the whole batch and is returned.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/filter"
)

// ErrorKind classifies a SinkError.
type ErrorKind uint8

const (
	// Invalid marks a record rejected before insertion.
	Invalid ErrorKind = iota + 1
	// Connection marks a failure to acquire, begin, insert or commit.
	Connection
)

func (k ErrorKind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Connection:
		return "connection"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

var (
	ErrInputsNotArray   = errors.New("inputs must be a JSON array")
	ErrGasCostNotObject = errors.New("gas_cost must be a JSON object")
)

// SinkError is returned or reported by loaders.
type SinkError struct {
	Kind     ErrorKind
	Sequence uint64
	Sender   string
	Function string
	Err      error
}

func (e *SinkError) Error() string {
	if e.Kind == Invalid {
		return fmt.Sprintf("invalid record from %s calling %s at checkpoint %d: %v", e.Sender, e.Function, e.Sequence, e.Err)
	}
	return fmt.Sprintf("sink %s error: %v", e.Kind, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// IsConnection reports whether err is a connection-level SinkError.
func IsConnection(err error) bool {
	var serr *SinkError
	return errors.As(err, &serr) && serr.Kind == Connection
}

// LoadResult summarises one Load call. Duplicates counts valid records the
// store already held.
type LoadResult struct {
	Inserted   int64
	Duplicates int64
	Rejected   []*SinkError
}

// Loader persists matched records. Load returns a connection-level *SinkError
// when the batch could not be written; rejected records never fail the batch.
type Loader interface {
	Initialize(ctx context.Context) error
	Load(ctx context.Context, recs []filter.MatchedRecord) (LoadResult, error)
}

// Validate checks that a record can be stored: inputs must be a JSON array and
// gas_cost a JSON object.
func Validate(rec filter.MatchedRecord) error {
	if serr := validate(rec); serr != nil {
		return serr
	}
	return nil
}

func validate(rec filter.MatchedRecord) *SinkError {
	invalid := func(err error) *SinkError {
		return &SinkError{
			Kind:     Invalid,
			Sequence: rec.CheckpointSequence,
			Sender:   rec.Sender,
			Function: rec.FunctionName,
			Err:      err,
		}
	}
	if !isJSON(rec.Inputs, '[') {
		return invalid(ErrInputsNotArray)
	}
	if !isJSON(rec.GasCost, '{') {
		return invalid(ErrGasCostNotObject)
	}
	return nil
}

func isJSON(raw json.RawMessage, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open && json.Valid(trimmed)
}

// partition splits recs into valid records and rejections, reporting each
// rejection to o.
func partition(ctx context.Context, o events.Observer, recs []filter.MatchedRecord) ([]filter.MatchedRecord, []*SinkError) {
	valid := make([]filter.MatchedRecord, 0, len(recs))
	var rejected []*SinkError
	for _, rec := range recs {
		serr := validate(rec)
		if serr == nil {
			valid = append(valid, rec)
			continue
		}
		rejected = append(rejected, serr)
		events.Emit(ctx, o, events.Event{
			Kind:     events.RecordRejected,
			Sequence: rec.CheckpointSequence,
			Sender:   rec.Sender,
			Function: rec.FunctionName,
			Err:      serr,
		})
	}
	return valid, rejected
}

func emitInserted(ctx context.Context, o events.Observer, recs []filter.MatchedRecord) {
	for _, rec := range recs {
		events.Emit(ctx, o, events.Event{
			Kind:     events.RecordInserted,
			Sequence: rec.CheckpointSequence,
			Sender:   rec.Sender,
			Function: rec.FunctionName,
		})
	}
}

func emitBatchFailed(ctx context.Context, o events.Observer, recs []filter.MatchedRecord, err error) {
	events.Emit(ctx, o, events.Event{
		Kind:     events.BatchFailed,
		Sequence: recs[0].CheckpointSequence,
		Count:    int64(len(recs)),
		Err:      err,
	})
}
