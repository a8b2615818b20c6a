package source

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
	"github.com/ava-labs/checkpoint-indexer/pkg/slidingwindow"
)

// Handler receives checkpoint bytes strictly in increasing sequence order.
type Handler = slidingwindow.Handler

// Config controls an Adapter run.
type Config struct {
	Start       uint64
	End         uint64 // inclusive; used only when Bounded
	Bounded     bool
	Concurrency uint64
	WindowSize  uint64 // sequences fetched ahead of the watermark; 0 means 4*Concurrency
	Retry       RetryConfig
}

// SourceError reports a sequence that could not be fetched within the retry
// budget, along with how far delivery got. LastDelivered counts every
// checkpoint handed to the handler, including ones the handler skipped; see
// Staging.LastStaged for the highest one actually written.
type SourceError struct {
	Sequence      uint64
	LastDelivered uint64
	Delivered     bool // false when nothing was delivered in this run
	Err           error
}

func (e *SourceError) Error() string {
	if !e.Delivered {
		return fmt.Sprintf("source failed at checkpoint %d before delivering any checkpoint: %v", e.Sequence, e.Err)
	}
	return fmt.Sprintf("source failed at checkpoint %d (last delivered %d): %v", e.Sequence, e.LastDelivered, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Adapter streams checkpoints from a Client into a Handler through a
// slidingwindow.Manager: up to Concurrency fetches run at once and the handler
// sees each sequence exactly once, in order.
type Adapter struct {
	log     *zap.SugaredLogger
	state   *slidingwindow.State
	manager *slidingwindow.Manager
}

// NewAdapter validates cfg and wires the window. m may be nil.
func NewAdapter(log *zap.SugaredLogger, client Client, handler Handler, m *metrics.Metrics, cfg Config) (*Adapter, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	if client == nil {
		return nil, errors.New("invalid client: must not be nil")
	}
	if cfg.Concurrency == 0 {
		return nil, errors.New("invalid concurrency: must be greater than 0")
	}
	if cfg.Retry.MaxAttempts <= 0 {
		return nil, errors.New("invalid max attempts: must be greater than 0")
	}
	if cfg.Bounded && cfg.End < cfg.Start {
		return nil, fmt.Errorf("invalid range: end < start: %d < %d", cfg.End, cfg.Start)
	}

	size := cfg.WindowSize
	if size == 0 {
		size = 4 * cfg.Concurrency
	}
	if size < cfg.Concurrency {
		size = cfg.Concurrency
	}
	state, err := slidingwindow.NewState(cfg.Start, size)
	if err != nil {
		return nil, err
	}
	if cfg.Bounded {
		if err := state.SetEnd(cfg.End); err != nil {
			return nil, err
		}
	}

	fetcher := &retryingFetcher{log: log, client: client, cfg: cfg.Retry, metrics: m}
	// The retry budget is spent inside the fetcher, so one failure from it is terminal.
	manager, err := slidingwindow.NewManager(log, state, fetcher, handler, m, cfg.Concurrency, 1)
	if err != nil {
		return nil, err
	}
	return &Adapter{log: log, state: state, manager: manager}, nil
}

// State exposes the window for checkpointing and the stall watchdog.
func (a *Adapter) State() *slidingwindow.State {
	return a.state
}

// LastDelivered returns the highest sequence handed to the handler in this run.
func (a *Adapter) LastDelivered() (uint64, bool) {
	return a.manager.LastDelivered()
}

// Run streams until ctx is cancelled, the bounded range is delivered, the
// handler fails, or a sequence exhausts its retry budget (*SourceError).
// Inflight fetches are drained before it returns.
func (a *Adapter) Run(ctx context.Context) error {
	err := a.manager.Run(ctx)

	var failed *slidingwindow.FetchFailedError
	if errors.As(err, &failed) {
		last, ok := a.LastDelivered()
		a.log.Errorw("checkpoint source failed",
			"sequence", failed.Sequence,
			"lastDelivered", last,
			"error", failed.Err,
		)
		return &SourceError{
			Sequence:      failed.Sequence,
			LastDelivered: last,
			Delivered:     ok,
			Err:           failed.Err,
		}
	}
	return err
}
